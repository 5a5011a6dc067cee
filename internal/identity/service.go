package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/idam-admin/idam/internal/db/models"
	"github.com/idam-admin/idam/internal/db/store"
	"github.com/idam-admin/idam/internal/provider"
)

// ErrProviderDisabled is returned by provider-only operations when no provider is configured.
var ErrProviderDisabled = errors.New("identity provider synchronization is disabled")

// ProviderSync is the part of provider.Gateway the service uses.
type ProviderSync interface {
	UpdateUser(ctx context.Context, subjectID string, attrs provider.UserAttributes) error
	DeleteUser(ctx context.Context, subjectID string) error
	RevokeRefreshTokens(ctx context.Context, subjectID string) error
	RecentUsers(ctx context.Context) (provider.RecentUsers, error)
}

// UserUpdate is a partial update. Nil fields are left unchanged.
type UserUpdate struct {
	EmailAddress            *string `json:"emailAddress,omitempty"            validate:"omitempty,email"`
	FirstName               *string `json:"firstName,omitempty"`
	LastName                *string `json:"lastName,omitempty"`
	IsLockedOut             *bool   `json:"isLockedOut,omitempty"`
	HasVerifiedEmailAddress *bool   `json:"hasVerifiedEmailAddress,omitempty"`
}

// Service is the administrative user surface.
type Service struct {
	store      store.IdentityStore
	reconciler *Reconciler
	roles      *RoleEngine
	importer   *Importer
	provider   ProviderSync
}

// NewService creates the service. p may be nil when provider synchronization is disabled.
func NewService(s store.IdentityStore, p ProviderSync) *Service {
	return &Service{
		store:      s,
		reconciler: NewReconciler(s),
		roles:      NewRoleEngine(s),
		importer:   NewImporter(s),
		provider:   p,
	}
}

// Roles returns the role engine sharing the service's store.
func (s *Service) Roles() *RoleEngine {
	return s.roles
}

// Importer returns the importer sharing the service's store.
func (s *Service) Importer() *Importer {
	return s.importer
}

// CreateUser reconciles c. See Reconciler.Reconcile.
func (s *Service) CreateUser(ctx context.Context, c Candidate) (Outcome, error) {
	return s.reconciler.Reconcile(ctx, c)
}

// GetUser returns the user with id.
func (s *Service) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "user %d", id)
	}

	return user, nil
}

// GetUsers returns users newest first, filtered as described on store.Gorm.SearchUsers.
func (s *Service) GetUsers(ctx context.Context, filter string) ([]models.User, error) {
	users, err := s.store.SearchUsers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	return users, nil
}

// FindUsers returns the users bound to subjectIDs.
func (s *Service) FindUsers(ctx context.Context, subjectIDs []string) ([]models.User, error) {
	users, err := s.store.FindUsersBySubjectIDs(ctx, subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}

	return users, nil
}

// FindRoles maps each subject id to its role names on host.
func (s *Service) FindRoles(ctx context.Context, subjectIDs []string, host string) (map[string][]string, error) {
	if strings.TrimSpace(host) == "" {
		return nil, invalid("host is required")
	}

	roles, err := s.store.FindRoleNamesByHost(ctx, subjectIDs, host)
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}

	return roles, nil
}

// UpdateUser applies u. For users known to the provider the change is pushed in the
// same transaction; a failed push rolls the local change back.
func (s *Service) UpdateUser(ctx context.Context, id uint64, u UserUpdate) (*models.User, error) {
	var updated *models.User

	err := s.store.Transaction(ctx, func(tx store.IdentityStore) error {
		user, err := tx.FindUserByID(ctx, id)
		if err != nil {
			return lookup(err, "user %d", id)
		}

		if err := applyUpdate(ctx, tx, user, u); err != nil {
			return err
		}

		if err := tx.UpdateUser(ctx, user); err != nil {
			return err //nolint:wrapcheck
		}

		if s.provider != nil && user.HasSubject() && user.IsInAuthenticationProvider {
			if err := s.provider.UpdateUser(ctx, user.Subject(), attributes(user)); err != nil {
				return fmt.Errorf("update user %d: %w", id, err)
			}
		}

		updated = user

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint64("user_id", id).Msg("user updated")

	return updated, nil
}

func applyUpdate(ctx context.Context, tx store.IdentityStore, user *models.User, u UserUpdate) error {
	if u.EmailAddress != nil {
		email := strings.TrimSpace(*u.EmailAddress)
		if email == "" {
			return invalid("email address can not be empty")
		}

		if !strings.EqualFold(email, user.EmailAddress) {
			other, err := tx.FindUserByEmail(ctx, email)

			switch {
			case err == nil && other.ID != user.ID:
				return fmt.Errorf("change email of user %d: %w", user.ID, ErrDuplicateEmail)
			case err != nil && !errors.Is(err, store.ErrNotFound):
				return err //nolint:wrapcheck
			}
		}

		user.EmailAddress = email
	}

	if u.FirstName != nil {
		user.FirstName = strings.TrimSpace(*u.FirstName)
	}

	if u.LastName != nil {
		user.LastName = strings.TrimSpace(*u.LastName)
	}

	if u.IsLockedOut != nil {
		user.IsLockedOut = *u.IsLockedOut
	}

	if u.HasVerifiedEmailAddress != nil {
		user.HasVerifiedEmailAddress = *u.HasVerifiedEmailAddress
	}

	return nil
}

// DeleteUser removes the user locally, then deletes the provider account and
// dispatches refresh token revocation. Revocation is dispatched even when the provider
// deletion fails; that error is returned after the local delete committed.
// Revocation problems are only logged.
func (s *Service) DeleteUser(ctx context.Context, id uint64) error {
	var subject string

	err := s.store.Transaction(ctx, func(tx store.IdentityStore) error {
		user, err := tx.FindUserByID(ctx, id)
		if err != nil {
			return lookup(err, "user %d", id)
		}

		subject = user.Subject()

		return tx.DeleteUser(ctx, id) //nolint:wrapcheck
	})
	if err != nil {
		return err
	}

	log.Info().Uint64("user_id", id).Str("subject_id", subject).Msg("user deleted")

	if s.provider == nil || subject == "" {
		return nil
	}

	errDelete := s.provider.DeleteUser(ctx, subject)

	if err := s.provider.RevokeRefreshTokens(ctx, subject); err != nil {
		log.Error().Err(err).Uint64("user_id", id).Str("subject_id", subject).
			Msg("refresh token revocation could not be dispatched")
	}

	if errDelete != nil {
		return fmt.Errorf("delete user %d from identity provider: %w", id, errDelete)
	}

	return nil
}

// RevokeSessions dispatches refresh token revocation for the user, e.g. on logout.
func (s *Service) RevokeSessions(ctx context.Context, id uint64) error {
	if s.provider == nil {
		return ErrProviderDisabled
	}

	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return lookup(err, "user %d", id)
	}

	if !user.HasSubject() {
		return invalid("user %d is not bound to the identity provider", id)
	}

	if err := s.provider.RevokeRefreshTokens(ctx, user.Subject()); err != nil {
		return fmt.Errorf("revoke sessions of user %d: %w", id, err)
	}

	return nil
}

// RecentUsers returns the provider's user total and its newest users.
func (s *Service) RecentUsers(ctx context.Context) (provider.RecentUsers, error) {
	if s.provider == nil {
		return provider.RecentUsers{}, ErrProviderDisabled
	}

	recent, err := s.provider.RecentUsers(ctx)
	if err != nil {
		return provider.RecentUsers{}, fmt.Errorf("recent users: %w", err)
	}

	return recent, nil
}

func attributes(u *models.User) provider.UserAttributes {
	return provider.UserAttributes{
		Blocked:       u.IsLockedOut,
		EmailVerified: u.HasVerifiedEmailAddress,
		Email:         u.EmailAddress,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
	}
}
