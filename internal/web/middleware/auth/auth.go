package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/idam-admin/idam/internal/auth"
	fiberlogger "github.com/idam-admin/idam/internal/logger/adapter/fiber"
)

const bearerPrefix = "bearer "

// TokenVerifier verifies and authorizes bearer tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (auth.Principal, error)
	Authorize(p auth.Principal) error
}

// New creates the middleware. Requests without a valid administrator token are rejected.
func New(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := Token(c)
		if raw == "" {
			return auth.ErrMissingToken
		}

		principal, err := verifier.Verify(c.UserContext(), raw)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("bearer token rejected")

			return err //nolint:wrapcheck
		}

		c.Locals(fiberlogger.LocalsSubject, principal.Subject)

		if err := verifier.Authorize(principal); err != nil {
			log.Warn().Str("subject", principal.Subject).Str("path", c.Path()).Msg("caller lacks administrator role")

			return err //nolint:wrapcheck
		}

		return c.Next()
	}
}

// Token returns the bearer token of the request or "".
func Token(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}

	return strings.TrimSpace(header[len(bearerPrefix):])
}
