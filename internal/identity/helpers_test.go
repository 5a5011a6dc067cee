package identity_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/idam-admin/idam/internal/db/dbtest"
	"github.com/idam-admin/idam/internal/db/models"
	"github.com/idam-admin/idam/internal/db/store"
	"github.com/idam-admin/idam/internal/provider"
)

func setupStore(t *testing.T) (*store.Gorm, *gorm.DB) {
	t.Helper()

	db := dbtest.Open(t)

	s, err := store.New(db)
	require.NoError(t, err)

	return s, db
}

// fakeProvider records provider calls.
type fakeProvider struct {
	mu sync.Mutex

	updateErr error
	deleteErr error
	revokeErr error

	updated map[string]provider.UserAttributes
	deleted []string
	revoked []string
	recent  provider.RecentUsers
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{updated: map[string]provider.UserAttributes{}}
}

func (f *fakeProvider) UpdateUser(_ context.Context, subjectID string, attrs provider.UserAttributes) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}

	f.updated[subjectID] = attrs

	return nil
}

func (f *fakeProvider) DeleteUser(_ context.Context, subjectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}

	f.deleted = append(f.deleted, subjectID)

	return nil
}

func (f *fakeProvider) RevokeRefreshTokens(_ context.Context, subjectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.revokeErr != nil {
		return f.revokeErr
	}

	f.revoked = append(f.revoked, subjectID)

	return nil
}

func (f *fakeProvider) RecentUsers(context.Context) (provider.RecentUsers, error) {
	return f.recent, nil
}

// staleSubjectStore reports the first misses subject lookups as not found, like a
// reader that ran before a concurrent insert committed.
type staleSubjectStore struct {
	store.IdentityStore

	misses *int
}

func (s staleSubjectStore) Transaction(ctx context.Context, fn func(tx store.IdentityStore) error) error {
	return s.IdentityStore.Transaction(ctx, func(tx store.IdentityStore) error {
		return fn(staleSubjectStore{IdentityStore: tx, misses: s.misses})
	})
}

func (s staleSubjectStore) FindUserBySubjectID(ctx context.Context, subjectID string) (*models.User, error) {
	if *s.misses > 0 {
		*s.misses--

		return nil, store.ErrNotFound
	}

	return s.IdentityStore.FindUserBySubjectID(ctx, subjectID)
}

var errRevokeFailed = errors.New("revoke failed")

// failingRevokeStore fails every grant revocation.
type failingRevokeStore struct {
	store.IdentityStore
}

func (s failingRevokeStore) Transaction(ctx context.Context, fn func(tx store.IdentityStore) error) error {
	return s.IdentityStore.Transaction(ctx, func(tx store.IdentityStore) error {
		return fn(failingRevokeStore{IdentityStore: tx})
	})
}

func (failingRevokeStore) DeleteUserRole(context.Context, uint64, uint64) error {
	return errRevokeFailed
}
