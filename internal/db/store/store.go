// Package store is the persistence layer over the identity tables.
// It holds no policy: every decision about what to write is made by the caller.
package store

import (
	"context"
	"errors"

	"github.com/idam-admin/idam/internal/db/models"
)

var (
	// ErrNotFound is returned by single-row lookups that match nothing.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a write violates a unique index.
	ErrConflict = errors.New("record conflicts with an existing row")

	// ErrDBNil is returned when the store was created without a database.
	ErrDBNil = errors.New("database connection is nil")
)

// IdentityStore is the data access contract of the identity core.
// A store handed to the Transaction callback runs every call in that transaction.
type IdentityStore interface {
	Transaction(ctx context.Context, fn func(tx IdentityStore) error) error

	FindUserByID(ctx context.Context, id uint64) (*models.User, error)
	FindUserBySubjectID(ctx context.Context, subjectID string) (*models.User, error)
	// FindUserByEmail matches case-insensitively and returns the oldest row on ties.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUsersBySubjectIDs(ctx context.Context, subjectIDs []string) ([]models.User, error)
	SearchUsers(ctx context.Context, filter string) ([]models.User, error)
	InsertUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	// DeleteUser removes the user with its grants and terms acceptances.
	DeleteUser(ctx context.Context, id uint64) error

	FindWebsiteByID(ctx context.Context, id uint64) (*models.Website, error)
	FindRolesByWebsite(ctx context.Context, websiteID uint64) ([]models.Role, error)
	FindRoleByID(ctx context.Context, id uint64) (*models.Role, error)
	FindRoleByNameAndHost(ctx context.Context, roleName, host string) (*models.Role, error)
	// FindRoleNamesByHost maps each given subject id to its role names on host.
	FindRoleNamesByHost(ctx context.Context, subjectIDs []string, host string) (map[string][]string, error)

	FindUserRole(ctx context.Context, userID, roleID uint64) (*models.UserRole, error)
	// FindUserRoleRows returns the user's grants ordered by grant id, with Role and Role.Website loaded.
	FindUserRoleRows(ctx context.Context, userID uint64) ([]models.UserRole, error)
	InsertUserRole(ctx context.Context, userRole *models.UserRole) error
	DeleteUserRole(ctx context.Context, userID, roleID uint64) error

	// FindLatestAcceptedTerms returns the acceptance with the highest terms version.
	FindLatestAcceptedTerms(ctx context.Context, userID uint64) (*models.TermsAcceptance, error)
}
