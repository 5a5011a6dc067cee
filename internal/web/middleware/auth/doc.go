// Package auth provides the bearer token middleware for the administrative API.
//
// The middleware performs the following tasks:
//   - reads the token from the Authorization header
//   - verifies it and checks the administrator role
//   - stores the caller's subject in the request locals for the access log
//
// Failures are returned as errors and rendered by the app's error handler.
package auth
