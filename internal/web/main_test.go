package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/idam-admin/idam/internal/auth"
	"github.com/idam-admin/idam/internal/claims"
	"github.com/idam-admin/idam/internal/config"
	"github.com/idam-admin/idam/internal/db/dbtest"
	"github.com/idam-admin/idam/internal/db/store"
	"github.com/idam-admin/idam/internal/identity"
	"github.com/idam-admin/idam/internal/web/handler"
)

const adminToken = "admin-token"

type staticVerifier struct{}

func (staticVerifier) Verify(_ context.Context, raw string) (auth.Principal, error) {
	if raw != adminToken {
		return auth.Principal{}, auth.ErrInvalidToken
	}

	return auth.Principal{Subject: "auth0|operator", Roles: []string{"IdentityAdministrator"}}, nil
}

func (staticVerifier) Authorize(auth.Principal) error {
	return nil
}

type testServer struct {
	t   *testing.T
	svc *Service
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := dbtest.Open(t)

	s, err := store.New(db)
	require.NoError(t, err)

	cfg := &config.Config{DevMode: true}

	svc, err := New(cfg, handler.Deps{
		DB:       db,
		Identity: identity.NewService(s, nil),
		Claims:   claims.NewProjector(s),
	}, staticVerifier{})
	require.NoError(t, err)

	return &testServer{t: t, svc: svc, db: db}
}

// do sends a request with the admin token and decodes a JSON answer into out.
func (ts *testServer) do(method, target string, body any, out any) int {
	ts.t.Helper()

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken)

	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := ts.svc.App.Test(req, -1)
	require.NoError(ts.t, err)

	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(ts.t, err)
		require.NoError(ts.t, json.Unmarshal(raw, out), string(raw))
	}

	return resp.StatusCode
}

func TestCheckAliveAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	for _, target := range []string{CheckAlivePath, MetricsPath} {
		resp, err := ts.svc.App.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)

		_ = resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, target)
	}

	ts.svc.alive.Store(false)

	resp, err := ts.svc.App.Test(httptest.NewRequest(http.MethodGet, CheckAlivePath, nil))
	require.NoError(t, err)

	_ = resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAPIRequiresToken(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.svc.App.Test(httptest.NewRequest(http.MethodGet, "/api/users", nil))
	require.NoError(t, err)

	_ = resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUserLifecycle(t *testing.T) {
	ts := newTestServer(t)

	candidate := map[string]string{
		"nameIdentifier": "auth0|jane",
		"emailAddress":   "jane@example.com",
		"firstName":      "Jane",
		"lastName":       "Doe",
	}

	var created struct {
		Outcome string `json:"outcome"`
		User    struct {
			ID uint64 `json:"id"`
		} `json:"user"`
	}

	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/users", candidate, &created))
	assert.Equal(t, "created", created.Outcome)
	require.NotZero(t, created.User.ID)

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/users", candidate, &created))
	assert.Equal(t, "merged", created.Outcome)

	var problem handler.Problem

	impostor := map[string]string{"nameIdentifier": "auth0|other", "emailAddress": "jane@example.com"}
	require.Equal(t, http.StatusConflict, ts.do(http.MethodPost, "/api/users", impostor, &problem))
	assert.Equal(t, http.StatusConflict, problem.Status)

	require.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/users", map[string]string{"emailAddress": "nope"}, nil))

	id := created.User.ID
	userPath := fmt.Sprintf("/api/users/%d", id)

	var users []map[string]any
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/users?q=jane%20doe", nil, &users))
	assert.Len(t, users, 1)

	var user map[string]any
	require.Equal(t, http.StatusOK, ts.do(http.MethodPatch, userPath, map[string]string{"lastName": "Smith"}, &user))
	assert.Equal(t, "Smith", user["lastName"])

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/users/find", map[string][]string{"subjectIds": {"auth0|jane"}}, &users))
	assert.Len(t, users, 1)

	require.Equal(t, http.StatusServiceUnavailable, ts.do(http.MethodPost, userPath+"/revoke", nil, nil))
	require.Equal(t, http.StatusServiceUnavailable, ts.do(http.MethodGet, "/api/provider/users/recent", nil, nil))

	require.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, userPath, nil, nil))
	require.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, userPath, nil, nil))
	require.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/users/abc", nil, nil))
}

func TestRolesAndClaims(t *testing.T) {
	ts := newTestServer(t)

	site := dbtest.Website(t, ts.db, "app.example.com")
	admin := dbtest.Role(t, ts.db, site, "Admin")
	reader := dbtest.Role(t, ts.db, site, "Reader")
	user := dbtest.User(t, ts.db, "auth0|jane", "jane@example.com", "Jane", "Doe")

	websiteRoles := fmt.Sprintf("/api/users/%d/websites/%d/roles", user.ID, site.ID)

	var view identity.WebsiteRoles
	require.Equal(t, http.StatusOK, ts.do(http.MethodPut, websiteRoles, map[string]any{
		"roles": []map[string]any{{"roleId": admin.ID, "hasRole": true}},
	}, &view))
	require.Len(t, view.Roles, 2)

	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, websiteRoles, nil, &view))
	assert.True(t, view.Roles[0].HasRole)

	userRoles := fmt.Sprintf("/api/users/%d/roles", user.ID)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPut, userRoles, map[string]any{"roleIds": []uint64{reader.ID}}, nil))
	require.Equal(t, http.StatusBadRequest, ts.do(http.MethodPut, userRoles, map[string]any{"roleIds": []uint64{9999}}, nil))

	var rows []map[string]any
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, userRoles, nil, &rows))
	assert.Len(t, rows, 2)

	var names map[string][]string
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/roles/find", map[string]any{
		"subjectIds": []string{"auth0|jane"},
		"host":       "app.example.com",
	}, &names))
	assert.Equal(t, []string{"Admin", "Reader"}, names["auth0|jane"])

	var got []claims.Claim
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/claims/auth0%7Cjane?host=true", nil, &got))
	assert.Equal(t, []claims.Claim{
		{Type: claims.FirstName, Value: "Jane"},
		{Type: claims.Role, Value: "Admin", Host: "app.example.com"},
		{Type: claims.Role, Value: "Reader", Host: "app.example.com"},
	}, got)

	require.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/claims/auth0%7Cnobody", nil, nil))
}

func TestImport(t *testing.T) {
	ts := newTestServer(t)

	site := dbtest.Website(t, ts.db, "app.example.com")
	dbtest.Role(t, ts.db, site, "Admin")

	var summary identity.ImportSummary
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/users/import", []map[string]any{
		{
			"emailAddress": "legacy@example.com",
			"roles":        []map[string]string{{"roleName": "Admin", "websiteHost": "app.example.com"}},
		},
		{"firstName": "no email"},
	}, &summary))

	assert.Equal(t, 2, summary.Records)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Invalid)
	assert.Equal(t, 1, summary.RolesGranted)

	require.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/users/import", []map[string]any{
		{"emailAddress": "x@example.com", "roles": []map[string]string{{"roleName": "Admin"}}},
	}, nil))
}

func TestCatalog(t *testing.T) {
	ts := newTestServer(t)

	var org map[string]any
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/organisations", map[string]string{"name": "Acme"}, &org))
	require.Equal(t, http.StatusConflict, ts.do(http.MethodPost, "/api/organisations", map[string]string{"name": "Acme"}, nil))
	require.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/organisations", map[string]string{}, nil))

	var svc, env, site struct {
		ID uint64 `json:"id"`
	}

	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/services", map[string]string{"name": "Portal"}, &svc))
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/environments", map[string]any{"name": "Production", "order": 3}, &env))
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/websites", map[string]any{
		"host": "portal.example.com", "serviceId": svc.ID, "environmentId": env.ID,
	}, &site))

	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/websites?host=PORTAL.example.com", nil, &site))
	require.Equal(t, http.StatusConflict, ts.do(http.MethodDelete, fmt.Sprintf("/api/services/%d", svc.ID), nil, nil))
	require.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, fmt.Sprintf("/api/websites/%d", site.ID), nil, nil))
	require.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, fmt.Sprintf("/api/services/%d", svc.ID), nil, nil))
	require.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, fmt.Sprintf("/api/services/%d", svc.ID), nil, nil))

	var orgs []map[string]any
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/organisations", nil, &orgs))
	assert.Len(t, orgs, 1)
}

func TestRoleDefinitionsAndTerms(t *testing.T) {
	ts := newTestServer(t)

	site := dbtest.Website(t, ts.db, "app.example.com")
	user := dbtest.User(t, ts.db, "auth0|jane", "jane@example.com", "Jane", "Doe")

	var role struct {
		ID uint64 `json:"id"`
	}

	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/roles", map[string]any{
		"name": "Editor", "description": "can edit", "websiteId": site.ID,
	}, &role))
	require.Equal(t, http.StatusConflict, ts.do(http.MethodPost, "/api/roles", map[string]any{"name": "Editor", "websiteId": site.ID}, nil))
	require.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/roles", map[string]any{"name": "Editor"}, nil))
	require.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/roles", nil, nil))

	var roles []map[string]any
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, fmt.Sprintf("/api/roles?websiteId=%d", site.ID), nil, &roles))
	require.Len(t, roles, 1)

	require.Equal(t, http.StatusOK, ts.do(http.MethodPut, fmt.Sprintf("/api/users/%d/roles", user.ID),
		map[string]any{"roleIds": []uint64{role.ID}}, nil))

	var version struct {
		ID uint64 `json:"id"`
	}

	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/terms", map[string]string{"versionDate": "2024-06-01T00:00:00Z"}, &version))
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, fmt.Sprintf("/api/terms/%d/acceptances", version.ID),
		map[string]uint64{"userId": user.ID}, nil))
	require.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, fmt.Sprintf("/api/terms/%d/acceptances", version.ID+1),
		map[string]uint64{"userId": user.ID}, nil))

	var got []claims.Claim
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/claims/auth0%7Cjane", nil, &got))
	assert.Equal(t, []claims.Claim{
		{Type: claims.FirstName, Value: "Jane"},
		{Type: claims.Role, Value: "Editor"},
		{Type: claims.TermsAndConditions, Value: strconv.FormatUint(version.ID, 10)},
	}, got)

	require.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, fmt.Sprintf("/api/roles/%d", role.ID), nil, nil))
	assert.Equal(t, int64(0), dbtest.CountUserRoles(t, ts.db, user.ID))
}
