package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/idam-admin/idam/internal/db/models"
	"github.com/idam-admin/idam/internal/db/store"
)

// OutcomeKind tells how a candidate was reconciled.
type OutcomeKind int

const (
	// OutcomeCreated means a new user row was written.
	OutcomeCreated OutcomeKind = iota + 1
	// OutcomeMerged means the candidate resolved to an existing row.
	OutcomeMerged
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCreated:
		return "created"
	case OutcomeMerged:
		return "merged"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Candidate is an incoming identity.
type Candidate struct {
	SubjectID    string `json:"nameIdentifier"`
	EmailAddress string `json:"emailAddress" validate:"required,email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
}

// Outcome of a reconciliation.
type Outcome struct {
	Kind OutcomeKind  `json:"outcome"`
	User *models.User `json:"user"`
}

// errInsertConflict marks a unique violation on insert. It is resolved after the
// transaction, because some databases abort the transaction on the violation.
var errInsertConflict = errors.New("user insert conflict")

// Reconciler decides create, merge or reject for incoming identities.
type Reconciler struct {
	store store.IdentityStore
}

// NewReconciler creates a reconciler.
func NewReconciler(s store.IdentityStore) *Reconciler {
	return &Reconciler{store: s}
}

// Reconcile resolves c against the store in one transaction.
//
// A user already bound to c.SubjectID is returned as merged. Otherwise the email decides:
// no match creates a user, a migrated user that is not yet in the provider gets the
// subject bound and is merged, any other match fails with ErrDuplicateEmail.
func (r *Reconciler) Reconcile(ctx context.Context, c Candidate) (Outcome, error) {
	c.SubjectID = strings.TrimSpace(c.SubjectID)
	c.EmailAddress = strings.TrimSpace(c.EmailAddress)

	if c.EmailAddress == "" {
		return Outcome{}, invalid("email address is required")
	}

	var out Outcome

	err := r.store.Transaction(ctx, func(tx store.IdentityStore) error {
		var err error

		out, err = reconcile(ctx, tx, c)

		return err
	})
	if errors.Is(err, errInsertConflict) {
		out, err = r.resolveConflict(ctx, c)
	}

	if err != nil {
		return Outcome{}, err
	}

	log.Info().
		Uint64("user_id", out.User.ID).
		Str("subject_id", c.SubjectID).
		Stringer("outcome", out.Kind).
		Msg("user reconciled")

	return out, nil
}

// resolveConflict handles an insert that lost a race. A concurrent first login for the
// same subject makes it a merge, anything else is a duplicate email.
func (r *Reconciler) resolveConflict(ctx context.Context, c Candidate) (Outcome, error) {
	if c.SubjectID != "" {
		user, err := r.store.FindUserBySubjectID(ctx, c.SubjectID)

		switch {
		case err == nil:
			return Outcome{Kind: OutcomeMerged, User: user}, nil
		case !errors.Is(err, store.ErrNotFound):
			return Outcome{}, fmt.Errorf("reconcile subject %s after insert conflict: %w", c.SubjectID, err)
		}
	}

	return Outcome{}, fmt.Errorf("create user: %w", ErrDuplicateEmail)
}

func reconcile(ctx context.Context, tx store.IdentityStore, c Candidate) (Outcome, error) {
	if c.SubjectID != "" {
		user, err := tx.FindUserBySubjectID(ctx, c.SubjectID)

		switch {
		case err == nil:
			return Outcome{Kind: OutcomeMerged, User: user}, nil
		case !errors.Is(err, store.ErrNotFound):
			return Outcome{}, fmt.Errorf("reconcile subject %s: %w", c.SubjectID, err)
		}
	}

	existing, err := tx.FindUserByEmail(ctx, c.EmailAddress)

	switch {
	case errors.Is(err, store.ErrNotFound):
		return create(ctx, tx, c)
	case err != nil:
		return Outcome{}, fmt.Errorf("reconcile email: %w", err)
	}

	if !existing.IsMigrated || existing.IsInAuthenticationProvider {
		log.Warn().
			Uint64("existing_user_id", existing.ID).
			Str("subject_id", c.SubjectID).
			Msg("email address collides with an active user")

		return Outcome{}, fmt.Errorf("reconcile subject %s: %w", c.SubjectID, ErrDuplicateEmail)
	}

	// legacy account claimed by its first provider identity
	if c.SubjectID != "" {
		existing.SetSubject(c.SubjectID)
		existing.IsMigrated = false
		existing.IsInAuthenticationProvider = true

		if err := tx.UpdateUser(ctx, existing); err != nil {
			return Outcome{}, fmt.Errorf("bind subject to migrated user %d: %w", existing.ID, err)
		}
	}

	return Outcome{Kind: OutcomeMerged, User: existing}, nil
}

func create(ctx context.Context, tx store.IdentityStore, c Candidate) (Outcome, error) {
	user := &models.User{
		EmailAddress: c.EmailAddress,
		FirstName:    strings.TrimSpace(c.FirstName),
		LastName:     strings.TrimSpace(c.LastName),
	}
	user.SetSubject(c.SubjectID)
	user.IsInAuthenticationProvider = user.HasSubject()

	if err := tx.InsertUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return Outcome{}, fmt.Errorf("create user: %w", errInsertConflict)
		}

		return Outcome{}, fmt.Errorf("create user: %w", err)
	}

	return Outcome{Kind: OutcomeCreated, User: user}, nil
}
