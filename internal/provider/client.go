package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"

	maxErrorBodySize = 4096
)

// Client talks to the provider management API over HTTP.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials clientcredentials.Config
	limiter     *rate.Limiter

	tokenMu sync.Mutex
	token   *oauth2.Token
}

// NewClient creates a management API client. Tokens are fetched lazily and cached until expiry.
func NewClient(cfg Config) *Client {
	cfg = cfg.WithDefaults()

	return &Client{
		baseURL:    cfg.baseURL(),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		credentials: clientcredentials.Config{
			ClientID:       cfg.ClientID,
			ClientSecret:   cfg.ClientSecret,
			TokenURL:       cfg.baseURL() + "/oauth/token",
			EndpointParams: url.Values{"audience": {cfg.audience()}},
			AuthStyle:      oauth2.AuthStyleInParams,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// AcquireManagementToken returns the cached token or performs the client-credentials
// exchange bound to ctx. Concurrent callers share one exchange.
func (c *Client) AcquireManagementToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("acquire management token: %w", err)
	}

	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token.Valid() {
		return c.token.AccessToken, nil
	}

	token, err := c.credentials.Token(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
	if err != nil {
		providerRequests.WithLabelValues("token", outcomeError).Inc()

		return "", unavailable("acquire management token", err)
	}

	providerRequests.WithLabelValues("token", outcomeOK).Inc()

	c.token = token

	return token.AccessToken, nil
}

// UpdateUserAttributes patches the provider user.
func (c *Client) UpdateUserAttributes(ctx context.Context, subjectID string, attrs UserAttributes) error {
	if subjectID == "" {
		return ErrEmptySubjectID
	}

	body := map[string]any{
		"blocked":        attrs.Blocked,
		"email_verified": attrs.EmailVerified,
		"email":          attrs.Email,
		"given_name":     attrs.FirstName,
		"family_name":    attrs.LastName,
		"name":           strings.TrimSpace(attrs.FirstName + " " + attrs.LastName),
	}

	return c.do(ctx, "update_user", http.MethodPatch, "/api/v2/users/"+url.PathEscape(subjectID), nil, body, nil)
}

// DeleteUser deletes the provider user.
func (c *Client) DeleteUser(ctx context.Context, subjectID string) error {
	if subjectID == "" {
		return ErrEmptySubjectID
	}

	return c.do(ctx, "delete_user", http.MethodDelete, "/api/v2/users/"+url.PathEscape(subjectID), nil, nil, nil)
}

// ListDeviceCredentials returns one page of the subject's device credentials of the given type.
func (c *Client) ListDeviceCredentials(
	ctx context.Context,
	subjectID, credentialType string,
	page, perPage int,
) ([]DeviceCredential, bool, error) {
	if subjectID == "" {
		return nil, false, ErrEmptySubjectID
	}

	query := url.Values{
		"user_id":        {subjectID},
		"type":           {credentialType},
		"page":           {strconv.Itoa(page)},
		"per_page":       {strconv.Itoa(perPage)},
		"include_totals": {"false"},
	}

	var credentials []DeviceCredential
	if err := c.do(ctx, "list_device_credentials", http.MethodGet, "/api/v2/device-credentials", query, nil, &credentials); err != nil {
		return nil, false, err
	}

	return credentials, len(credentials) >= perPage, nil
}

// DeleteDeviceCredential revokes a single device credential.
func (c *Client) DeleteDeviceCredential(ctx context.Context, credentialID string) error {
	return c.do(ctx, "delete_device_credential", http.MethodDelete,
		"/api/v2/device-credentials/"+url.PathEscape(credentialID), nil, nil, nil)
}

// ListRecentUsers returns the total user count and the newest count users.
func (c *Client) ListRecentUsers(ctx context.Context, count int) (RecentUsers, error) {
	query := url.Values{
		"sort":           {"created_at:-1"},
		"page":           {"0"},
		"per_page":       {strconv.Itoa(count)},
		"include_totals": {"true"},
	}

	var page struct {
		Total int `json:"total"`
		Users []struct {
			UserID    string    `json:"user_id"`
			Email     string    `json:"email"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"users"`
	}

	if err := c.do(ctx, "list_users", http.MethodGet, "/api/v2/users", query, nil, &page); err != nil {
		return RecentUsers{}, err
	}

	out := RecentUsers{Total: page.Total, Users: make([]BasicUserInfo, 0, len(page.Users))}
	for _, u := range page.Users {
		out.Users = append(out.Users, BasicUserInfo{SubjectID: u.UserID, EmailAddress: u.Email, CreatedAt: u.CreatedAt})
	}

	return out, nil
}

// do executes one authenticated call. Non-2xx responses become *RateLimitError or *APIError.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: wait for outbound rate limiter: %w", op, err)
	}

	token, err := c.AcquireManagementToken(ctx)
	if err != nil {
		return err
	}

	var body io.Reader

	if in != nil {
		payload, errMarshal := json.Marshal(in)
		if errMarshal != nil {
			return fmt.Errorf("%s: marshal request: %w", op, errMarshal)
		}

		body = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		providerRequests.WithLabelValues(op, outcomeError).Inc()

		return fmt.Errorf("%s: %w", op, err)
	}

	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		providerRequests.WithLabelValues(op, outcomeRateLimited).Inc()

		return &RateLimitError{RateLimit: parseRateLimit(resp.Header), Message: readErrorMessage(resp.Body)}
	case resp.StatusCode >= http.StatusMultipleChoices:
		providerRequests.WithLabelValues(op, outcomeError).Inc()

		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	providerRequests.WithLabelValues(op, outcomeOK).Inc()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}

	return nil
}

// parseRateLimit reads the quota headers. Missing or malformed values stay zero.
func parseRateLimit(h http.Header) RateLimit {
	var rl RateLimit

	if v, err := strconv.Atoi(h.Get(headerRateLimitLimit)); err == nil {
		rl.Limit = v
	}

	if v, err := strconv.Atoi(h.Get(headerRateLimitRemaining)); err == nil {
		rl.Remaining = v
	}

	if v, err := strconv.ParseInt(h.Get(headerRateLimitReset), 10, 64); err == nil && v > 0 {
		rl.Reset = time.Unix(v, 0).UTC()
	}

	return rl
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	if json.Unmarshal(raw, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}

		if payload.Error != "" {
			return payload.Error
		}
	}

	return strings.TrimSpace(string(raw))
}
