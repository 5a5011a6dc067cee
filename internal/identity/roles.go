package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/idam-admin/idam/internal/db/models"
	"github.com/idam-admin/idam/internal/db/store"
)

// RoleView is one role of a website with the user's grant state.
type RoleView struct {
	RoleID      uint64 `json:"roleId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	HasRole     bool   `json:"hasRole"`
}

// WebsiteRoles lists every role of a website for one user.
type WebsiteRoles struct {
	UserID    uint64     `json:"userId"`
	WebsiteID uint64     `json:"websiteId"`
	Roles     []RoleView `json:"roles"`
}

// RoleToggle is the desired grant state of one role.
type RoleToggle struct {
	RoleID  uint64 `json:"roleId"  validate:"required"`
	HasRole bool   `json:"hasRole"`
}

// RoleEngine maintains role grants.
type RoleEngine struct {
	store store.IdentityStore
}

// NewRoleEngine creates a role engine.
func NewRoleEngine(s store.IdentityStore) *RoleEngine {
	return &RoleEngine{store: s}
}

// GetRolesForUserByWebsite returns every role of the website, flagged with whether the user holds it.
func (e *RoleEngine) GetRolesForUserByWebsite(ctx context.Context, userID, websiteID uint64) (WebsiteRoles, error) {
	if _, err := e.store.FindUserByID(ctx, userID); err != nil {
		return WebsiteRoles{}, lookup(err, "user %d", userID)
	}

	if _, err := e.store.FindWebsiteByID(ctx, websiteID); err != nil {
		return WebsiteRoles{}, lookup(err, "website %d", websiteID)
	}

	return websiteRoles(ctx, e.store, userID, websiteID)
}

// UpdateRolesForUserByWebsite applies the desired grant states in one transaction.
// Grants are inserted or deleted only where the state differs; roles of other websites are ignored.
func (e *RoleEngine) UpdateRolesForUserByWebsite(
	ctx context.Context,
	userID, websiteID uint64,
	desired []RoleToggle,
) (WebsiteRoles, error) {
	var view WebsiteRoles

	err := e.store.Transaction(ctx, func(tx store.IdentityStore) error {
		if _, err := tx.FindUserByID(ctx, userID); err != nil {
			return lookup(err, "user %d", userID)
		}

		if _, err := tx.FindWebsiteByID(ctx, websiteID); err != nil {
			return lookup(err, "website %d", websiteID)
		}

		roles, err := tx.FindRolesByWebsite(ctx, websiteID)
		if err != nil {
			return err //nolint:wrapcheck
		}

		inScope := make(map[uint64]bool, len(roles))
		for _, role := range roles {
			inScope[role.ID] = true
		}

		for _, toggle := range desired {
			if !inScope[toggle.RoleID] {
				log.Debug().Uint64("role_id", toggle.RoleID).Uint64("website_id", websiteID).
					Msg("ignoring role of another website")

				continue
			}

			if toggle.HasRole {
				if _, _, err := grant(ctx, tx, userID, toggle.RoleID); err != nil {
					return err
				}

				continue
			}

			if err := tx.DeleteUserRole(ctx, userID, toggle.RoleID); err != nil {
				return err //nolint:wrapcheck
			}
		}

		view, err = websiteRoles(ctx, tx, userID, websiteID)

		return err
	})
	if err != nil {
		return WebsiteRoles{}, err
	}

	log.Info().Uint64("user_id", userID).Uint64("website_id", websiteID).Int("changes", len(desired)).
		Msg("website roles updated")

	return view, nil
}

// GetRolesForUser returns the user's grants across all websites in grant order.
func (e *RoleEngine) GetRolesForUser(ctx context.Context, userID uint64) ([]models.UserRole, error) {
	if _, err := e.store.FindUserByID(ctx, userID); err != nil {
		return nil, lookup(err, "user %d", userID)
	}

	rows, err := e.store.FindUserRoleRows(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return rows, nil
}

// UpdateRolesForUser grants every role in roleIDs. Nothing is revoked.
// An unknown role id fails the whole call with ErrValidation.
func (e *RoleEngine) UpdateRolesForUser(ctx context.Context, userID uint64, roleIDs []uint64) ([]models.UserRole, error) {
	out := make([]models.UserRole, 0, len(roleIDs))

	err := e.store.Transaction(ctx, func(tx store.IdentityStore) error {
		if _, err := tx.FindUserByID(ctx, userID); err != nil {
			return lookup(err, "user %d", userID)
		}

		for _, roleID := range roleIDs {
			if _, err := tx.FindRoleByID(ctx, roleID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return invalid("role %d does not exist", roleID)
				}

				return err //nolint:wrapcheck
			}

			userRole, _, err := grant(ctx, tx, userID, roleID)
			if err != nil {
				return err
			}

			out = append(out, *userRole)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// ResolveRoleByNameAndHost returns the id of the role named roleName on the website serving host.
func (e *RoleEngine) ResolveRoleByNameAndHost(ctx context.Context, roleName, host string) (uint64, error) {
	role, err := e.store.FindRoleByNameAndHost(ctx, roleName, host)
	if err != nil {
		return 0, lookup(err, "role %q on %q", roleName, host)
	}

	return role.ID, nil
}

// grant inserts the grant unless it exists. created reports whether a row was written.
func grant(ctx context.Context, tx store.IdentityStore, userID, roleID uint64) (*models.UserRole, bool, error) {
	existing, err := tx.FindUserRole(ctx, userID, roleID)

	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, err //nolint:wrapcheck
	}

	userRole := &models.UserRole{UserID: userID, RoleID: roleID}
	if err := tx.InsertUserRole(ctx, userRole); err != nil {
		return nil, false, fmt.Errorf("grant role %d: %w", roleID, err)
	}

	return userRole, true, nil
}

func websiteRoles(ctx context.Context, s store.IdentityStore, userID, websiteID uint64) (WebsiteRoles, error) {
	roles, err := s.FindRolesByWebsite(ctx, websiteID)
	if err != nil {
		return WebsiteRoles{}, err //nolint:wrapcheck
	}

	grants, err := s.FindUserRoleRows(ctx, userID)
	if err != nil {
		return WebsiteRoles{}, err //nolint:wrapcheck
	}

	held := make(map[uint64]bool, len(grants))
	for _, g := range grants {
		held[g.RoleID] = true
	}

	view := WebsiteRoles{UserID: userID, WebsiteID: websiteID, Roles: make([]RoleView, 0, len(roles))}
	for _, role := range roles {
		view.Roles = append(view.Roles, RoleView{
			RoleID:      role.ID,
			Name:        role.Name,
			Description: role.Description,
			HasRole:     held[role.ID],
		})
	}

	return view, nil
}
