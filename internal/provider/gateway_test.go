package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_RevokeRefreshTokensDoesNotWait(t *testing.T) {
	api := newFakeAPI(3)
	api.listGate = make(chan struct{})

	revoker := newTestRevoker(api, 4)
	gateway := NewGateway(api, revoker, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		revoker.Wait()
	}()

	revoker.Start(ctx)

	done := make(chan error, 1)
	go func() { done <- gateway.RevokeRefreshTokens(context.Background(), "auth0|user") }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RevokeRefreshTokens blocked on the background job")
	}

	// the job is still parked on the first page request
	close(api.listGate)

	select {
	case res := <-revoker.Results():
		assert.Equal(t, 3, res.Revoked)
	case <-time.After(5 * time.Second):
		t.Fatal("revocation job did not finish")
	}
}

func TestGateway_RevokeRefreshTokensTokenFailure(t *testing.T) {
	api := newFakeAPI(3)
	api.tokenErr = errBoom

	revoker := newTestRevoker(api, 4)
	gateway := NewGateway(api, revoker, Config{})

	err := gateway.RevokeRefreshTokens(context.Background(), "auth0|user")

	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, revoker.jobs, "nothing queued when the token can not be acquired")
}

func TestGateway_UpdateUser(t *testing.T) {
	api := newFakeAPI(0)
	gateway := NewGateway(api, newTestRevoker(api, 1), Config{})

	attrs := UserAttributes{Email: "jane@example.com", FirstName: "Jane", LastName: "Doe", EmailVerified: true}
	require.NoError(t, gateway.UpdateUser(context.Background(), "auth0|jane", attrs))
	assert.Equal(t, attrs, api.updated["auth0|jane"])

	api.updateErr = &APIError{StatusCode: 400, Message: "bad request"}
	err := gateway.UpdateUser(context.Background(), "auth0|jane", attrs)
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
}

func TestGateway_DeleteAndRecentUsers(t *testing.T) {
	api := newFakeAPI(0)
	api.recent = RecentUsers{Total: 42, Users: []BasicUserInfo{{SubjectID: "auth0|1"}}}

	gateway := NewGateway(api, newTestRevoker(api, 1), Config{})

	require.NoError(t, gateway.DeleteUser(context.Background(), "auth0|gone"))
	assert.Equal(t, []string{"auth0|gone"}, api.deletedUsers)

	recent, err := gateway.RecentUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, recent.Total)
	assert.Equal(t, DefaultRecentUsersCount, api.recentCount)
}
