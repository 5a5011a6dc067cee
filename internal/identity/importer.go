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

// ImportSummary counts what an import did.
type ImportSummary struct {
	Records          int `json:"records"`
	Created          int `json:"created"`
	Existing         int `json:"existing"`
	Invalid          int `json:"invalid"`
	RolesGranted     int `json:"rolesGranted"`
	RolesAlreadyHeld int `json:"rolesAlreadyHeld"`
	RolesNotFound    int `json:"rolesNotFound"`
}

// Importer upserts legacy user records with their role grants.
type Importer struct {
	store store.IdentityStore
}

// NewImporter creates an importer.
func NewImporter(s store.IdentityStore) *Importer {
	return &Importer{store: s}
}

// ImportUsers processes records one at a time, each in its own transaction.
//
// A record resolves to an existing user by subject id, then by email. Existing users
// keep their attributes. Unknown users are created as migrated accounts without provider
// binding. Roles are granted additively; roles that can not be resolved are skipped.
// Records without email are counted as invalid and skipped. Any other store error stops
// the import; records before it stay committed.
func (im *Importer) ImportUsers(ctx context.Context, records []models.ImportUser) (ImportSummary, error) {
	var sum ImportSummary

	for i := range records {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("import stopped before record %d: %w", i, err)
		}

		rec := records[i]
		sum.Records++

		if strings.TrimSpace(rec.EmailAddress) == "" {
			sum.Invalid++

			log.Warn().Int("record", i).Str("user_id", rec.UserID).Msg("import record without email skipped")

			continue
		}

		var recSum ImportSummary

		err := im.store.Transaction(ctx, func(tx store.IdentityStore) error {
			recSum = ImportSummary{}

			return importRecord(ctx, tx, rec, &recSum)
		})
		if err != nil {
			return sum, fmt.Errorf("import record %d (%s): %w", i, rec.EmailAddress, err)
		}

		sum.add(recSum)
	}

	log.Info().
		Int("records", sum.Records).
		Int("created", sum.Created).
		Int("existing", sum.Existing).
		Int("invalid", sum.Invalid).
		Int("roles_granted", sum.RolesGranted).
		Int("roles_not_found", sum.RolesNotFound).
		Msg("import finished")

	return sum, nil
}

func importRecord(ctx context.Context, tx store.IdentityStore, rec models.ImportUser, sum *ImportSummary) error {
	user, err := findImported(ctx, tx, rec)

	switch {
	case errors.Is(err, store.ErrNotFound):
		user = &models.User{
			EmailAddress: strings.TrimSpace(rec.EmailAddress),
			FirstName:    strings.TrimSpace(rec.FirstName),
			LastName:     strings.TrimSpace(rec.LastName),
			IsMigrated:   true,
		}

		if err := tx.InsertUser(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		sum.Created++
	case err != nil:
		return err
	default:
		sum.Existing++
	}

	for _, role := range rec.Roles {
		resolved, err := tx.FindRoleByNameAndHost(ctx, role.RoleName, role.WebsiteHost)
		if errors.Is(err, store.ErrNotFound) {
			sum.RolesNotFound++

			log.Warn().Str("role", role.RoleName).Str("host", role.WebsiteHost).Uint64("user_id", user.ID).
				Msg("import role not found, grant skipped")

			continue
		}

		if err != nil {
			return err //nolint:wrapcheck
		}

		_, created, err := grant(ctx, tx, user.ID, resolved.ID)
		if err != nil {
			return err
		}

		if created {
			sum.RolesGranted++
		} else {
			sum.RolesAlreadyHeld++
		}
	}

	return nil
}

func findImported(ctx context.Context, tx store.IdentityStore, rec models.ImportUser) (*models.User, error) {
	if id := strings.TrimSpace(rec.UserID); id != "" {
		user, err := tx.FindUserBySubjectID(ctx, id)
		if !errors.Is(err, store.ErrNotFound) {
			return user, err //nolint:wrapcheck
		}
	}

	return tx.FindUserByEmail(ctx, rec.EmailAddress) //nolint:wrapcheck
}

func (s *ImportSummary) add(o ImportSummary) {
	s.Created += o.Created
	s.Existing += o.Existing
	s.RolesGranted += o.RolesGranted
	s.RolesAlreadyHeld += o.RolesAlreadyHeld
	s.RolesNotFound += o.RolesNotFound
}
