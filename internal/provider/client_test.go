package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server

	tokenCalls atomic.Int32
	mux        *http.ServeMux
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{mux: http.NewServeMux()}

	ts.mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		ts.tokenCalls.Add(1)

		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}

		if r.PostForm.Get("client_secret") != "secret" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"access_denied"}`))

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"management-token","token_type":"Bearer","expires_in":3600}`))
	})

	ts.Server = httptest.NewServer(ts.mux)
	t.Cleanup(ts.Close)

	return ts
}

func (ts *testServer) client(secret string) *Client {
	return NewClient(Config{
		BaseURL:           ts.URL,
		ClientID:          "client",
		ClientSecret:      secret,
		RequestsPerSecond: 1000,
		Burst:             100,
	})
}

func TestClient_UpdateUserAttributes(t *testing.T) {
	ts := newTestServer(t)

	var got map[string]any

	ts.mux.HandleFunc("PATCH /api/v2/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer management-token", r.Header.Get("Authorization"))
		assert.Equal(t, "auth0|jane", r.PathValue("id"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})

	c := ts.client("secret")

	err := c.UpdateUserAttributes(context.Background(), "auth0|jane", UserAttributes{
		Blocked:       true,
		EmailVerified: true,
		Email:         "jane@example.com",
		FirstName:     "Jane",
		LastName:      "Doe",
	})
	require.NoError(t, err)

	assert.Equal(t, true, got["blocked"])
	assert.Equal(t, true, got["email_verified"])
	assert.Equal(t, "jane@example.com", got["email"])
	assert.Equal(t, "Jane", got["given_name"])
	assert.Equal(t, "Doe", got["family_name"])
	assert.Equal(t, "Jane Doe", got["name"])

	// second call reuses the cached token
	require.NoError(t, c.UpdateUserAttributes(context.Background(), "auth0|jane", UserAttributes{}))
	assert.Equal(t, int32(1), ts.tokenCalls.Load())
}

func TestClient_ListDeviceCredentials(t *testing.T) {
	ts := newTestServer(t)

	ts.mux.HandleFunc("GET /api/v2/device-credentials", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "auth0|jane", q.Get("user_id"))
		assert.Equal(t, CredentialTypeRefreshToken, q.Get("type"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "2", q.Get("per_page"))

		_, _ = w.Write([]byte(`[{"id":"dcr_1","type":"refresh_token"},{"id":"dcr_2","type":"refresh_token"}]`))
	})

	creds, more, err := ts.client("secret").
		ListDeviceCredentials(context.Background(), "auth0|jane", CredentialTypeRefreshToken, 2, 2)
	require.NoError(t, err)
	assert.True(t, more)
	require.Len(t, creds, 2)
	assert.Equal(t, "dcr_1", creds[0].ID)
}

func TestClient_RateLimited(t *testing.T) {
	ts := newTestServer(t)
	reset := time.Now().Add(time.Minute).Unix()

	ts.mux.HandleFunc("DELETE /api/v2/device-credentials/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerRateLimitLimit, "50")
		w.Header().Set(headerRateLimitRemaining, "0")
		w.Header().Set(headerRateLimitReset, strconv.FormatInt(reset, 10))
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"Global limit has been reached"}`))
	})

	err := ts.client("secret").DeleteDeviceCredential(context.Background(), "dcr_1")

	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 50, rl.RateLimit.Limit)
	assert.Equal(t, 0, rl.RateLimit.Remaining)
	assert.Equal(t, reset, rl.RateLimit.Reset.Unix())
	assert.Equal(t, "Global limit has been reached", rl.Message)
}

func TestClient_APIError(t *testing.T) {
	ts := newTestServer(t)

	ts.mux.HandleFunc("DELETE /api/v2/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"statusCode":404,"error":"Not Found"}`))
	})

	err := ts.client("secret").DeleteUser(context.Background(), "auth0|missing")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Not Found", apiErr.Message)
}

func TestClient_TokenFailure(t *testing.T) {
	ts := newTestServer(t)

	_, err := ts.client("wrong").AcquireManagementToken(context.Background())
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	err = ts.client("wrong").DeleteUser(context.Background(), "auth0|jane")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestClient_TokenHonoursContext(t *testing.T) {
	hung := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(hung.Close)

	c := NewClient(Config{BaseURL: hung.URL, ClientID: "client", ClientSecret: "secret"})

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.AcquireManagementToken(cancelled)
	require.ErrorIs(t, err, context.Canceled)

	ctx, cancelTimeout := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelTimeout()

	start := time.Now()
	_, err = c.AcquireManagementToken(ctx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second, "a hung token endpoint does not outlive the caller")
}

func TestClient_EmptySubjectID(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:0"})

	assert.ErrorIs(t, c.DeleteUser(context.Background(), ""), ErrEmptySubjectID)
	assert.ErrorIs(t, c.UpdateUserAttributes(context.Background(), "", UserAttributes{}), ErrEmptySubjectID)

	_, _, err := c.ListDeviceCredentials(context.Background(), "", CredentialTypeRefreshToken, 0, 50)
	assert.ErrorIs(t, err, ErrEmptySubjectID)
}

func TestClient_ListRecentUsers(t *testing.T) {
	ts := newTestServer(t)

	ts.mux.HandleFunc("GET /api/v2/users", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "created_at:-1", q.Get("sort"))
		assert.Equal(t, "10", q.Get("per_page"))
		assert.Equal(t, "true", q.Get("include_totals"))

		_, _ = w.Write([]byte(`{"total":1234,"users":[` +
			`{"user_id":"auth0|b","email":"b@example.com","created_at":"2024-05-02T10:00:00Z"},` +
			`{"user_id":"auth0|a","email":"a@example.com","created_at":"2024-05-01T10:00:00Z"}]}`))
	})

	recent, err := ts.client("secret").ListRecentUsers(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1234, recent.Total)
	require.Len(t, recent.Users, 2)
	assert.Equal(t, "auth0|b", recent.Users[0].SubjectID)
	assert.Equal(t, "b@example.com", recent.Users[0].EmailAddress)
	assert.Equal(t, 2024, recent.Users[0].CreatedAt.Year())
}

func TestParseRateLimit_Malformed(t *testing.T) {
	h := http.Header{}
	h.Set(headerRateLimitRemaining, "x")
	h.Set(headerRateLimitReset, "")

	rl := parseRateLimit(h)

	assert.Zero(t, rl.Remaining)
	assert.True(t, rl.Reset.IsZero())
}
