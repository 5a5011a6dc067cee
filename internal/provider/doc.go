// Package provider synchronizes local identity state with the external
// authentication provider's management API.
//
// Client is the HTTP transport: it acquires a short-lived management token
// through the OAuth2 client-credentials grant, throttles outbound calls and
// turns provider rate-limit responses into *RateLimitError values.
//
// Gateway applies policy on top of a ManagementAPI: attribute updates,
// account deletion, and refresh token revocation. Revocation never runs on
// the caller's path; it is handed to a Revoker, a supervised background
// worker that pages through the subject's device credentials and deletes
// them one by one under RetryPolicy.
//
// RetryPolicy retries only rate-limited calls, and only while the provider
// reports an exhausted quota with a reset instant in the future. It sleeps
// until exactly that instant, never a negative duration, at most MaxRetries
// times.
package provider
