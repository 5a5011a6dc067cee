package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Principal is the verified caller.
type Principal struct {
	Subject string
	Roles   []string
}

// HasRole reports whether the principal holds role.
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// Verifier checks bearer access tokens.
type Verifier struct {
	config   Config
	verifier *oidc.IDTokenVerifier
}

// NewVerifier discovers the issuer's keys and creates a verifier.
func NewVerifier(ctx context.Context, config Config) (*Verifier, error) {
	if !config.Enabled {
		return nil, ErrAuthDisabled
	}

	provider, err := oidc.NewProvider(ctx, config.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	config = config.WithDefaults()

	return &Verifier{
		config:   config,
		verifier: provider.Verifier(oidcConfig(config)),
	}, nil
}

// NewStaticVerifier creates a verifier with a fixed key set and no discovery.
func NewStaticVerifier(config Config, keySet oidc.KeySet) *Verifier {
	config = config.WithDefaults()

	return &Verifier{
		config:   config,
		verifier: oidc.NewVerifier(config.Issuer, keySet, oidcConfig(config)),
	}
}

func oidcConfig(config Config) *oidc.Config {
	return &oidc.Config{
		ClientID:          config.Audience,
		SkipClientIDCheck: config.Audience == "",
	}
}

// Verify validates rawToken and extracts the principal.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (Principal, error) {
	if strings.TrimSpace(rawToken) == "" {
		return Principal{}, ErrMissingToken
	}

	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	var claims map[string]json.RawMessage
	if err := token.Claims(&claims); err != nil {
		return Principal{}, fmt.Errorf("%w: failed to parse claims: %w", ErrInvalidToken, err)
	}

	return Principal{
		Subject: token.Subject,
		Roles:   rolesFromClaim(claims[v.config.RolesClaim]),
	}, nil
}

// Authorize returns ErrForbidden unless p holds the administrator role.
func (v *Verifier) Authorize(p Principal) error {
	if !p.HasRole(v.config.AdminRole) {
		return fmt.Errorf("%w: subject %s", ErrForbidden, p.Subject)
	}

	return nil
}

// rolesFromClaim accepts a list of strings or a single space separated string.
func rolesFromClaim(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.Fields(single)
	}

	return nil
}
