// Package auth verifies bearer access tokens for the administrative API.
//
// Tokens are JWTs issued by the OpenID Connect issuer configured in Config. The
// Verifier discovers the issuer's signing keys, checks signature, issuer, audience
// and expiry, and returns a Principal with the subject and the roles found in the
// configured roles claim.
//
// Example usage:
//
//	verifier, err := auth.NewVerifier(ctx, cfg.Auth)
//	principal, err := verifier.Verify(ctx, rawToken)
//	err = verifier.Authorize(principal)
package auth
