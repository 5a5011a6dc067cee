package provider

import (
	"strings"
	"time"
)

const (
	// DefaultPageSize is the number of device credentials requested per page.
	DefaultPageSize = 50
	// DefaultMaxRetries is the number of rate-limit retries per credential deletion.
	DefaultMaxRetries = 3
	// DefaultRecentUsersCount is the number of users returned by RecentUsers.
	DefaultRecentUsersCount = 10
	// DefaultRevocationQueueSize is the capacity of the revocation job queue.
	DefaultRevocationQueueSize = 256

	defaultTimeout           = 30 * time.Second
	defaultRequestsPerSecond = 10
	defaultBurst             = 5
)

// Config holds the management API settings. It is passed explicitly to
// NewClient, NewRevoker and NewGateway.
type Config struct {
	// Enabled turns provider synchronization on. When false the daemon runs without a gateway.
	Enabled bool
	// Domain is the provider tenant domain, e.g. "tenant.eu.auth0.com".
	Domain string
	// BaseURL overrides "https://<Domain>". Mainly useful for tests and proxies.
	BaseURL string
	// ClientID of the machine-to-machine application.
	ClientID string
	// ClientSecret of the machine-to-machine application.
	ClientSecret string
	// Audience is the management API identifier. Defaults to "<BaseURL>/api/v2/".
	Audience string
	// Timeout for a single HTTP call.
	Timeout time.Duration
	// RequestsPerSecond throttles outbound calls on this side of the wire.
	RequestsPerSecond float64
	// Burst is the limiter bucket size.
	Burst int
	// PageSize for device credential listing.
	PageSize int
	// MaxRetries for rate-limited credential deletions.
	MaxRetries int
	// RecentUsersCount is the page size of the recent users dashboard query.
	RecentUsersCount int
	// RevocationQueueSize bounds the number of pending revocation jobs.
	RevocationQueueSize int
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}

	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = defaultRequestsPerSecond
	}

	if c.Burst <= 0 {
		c.Burst = defaultBurst
	}

	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}

	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}

	if c.RecentUsersCount <= 0 {
		c.RecentUsersCount = DefaultRecentUsersCount
	}

	if c.RevocationQueueSize <= 0 {
		c.RevocationQueueSize = DefaultRevocationQueueSize
	}

	return c
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}

	return "https://" + strings.TrimRight(c.Domain, "/")
}

func (c Config) audience() string {
	if c.Audience != "" {
		return c.Audience
	}

	return c.baseURL() + "/api/v2/"
}
