package provider

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK          = "ok"
	outcomeError       = "error"
	outcomeRateLimited = "rate_limited"
)

var (
	providerRequests = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Number of management API calls, differentiated by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	rateLimitRetries = promauto.NewCounter( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "provider_rate_limit_retries_total",
			Help: "Number of retries scheduled because the management API quota was exhausted.",
		},
	)

	revokedCredentials = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "provider_revoked_credentials_total",
			Help: "Number of device credentials processed by the revocation worker.",
		},
		[]string{"outcome"},
	)
)
