package auth

// Config holds the bearer token settings of the administrative API.
type Config struct {
	// Enabled turns token verification on. Disabled is meant for local development only.
	Enabled bool
	// Issuer is the OIDC issuer URL used for discovery (e.g., "https://tenant.eu.auth0.com/").
	Issuer string
	// Audience is the expected "aud" value. Empty skips the audience check.
	Audience string
	// RolesClaim is the claim that lists the caller's roles.
	RolesClaim string
	// AdminRole is the role required for every administrative call.
	AdminRole string
}

const (
	defaultRolesClaim = "roles"
	defaultAdminRole  = "IdentityAdministrator"
)

// WithDefaults fills the roles claim and admin role when unset.
func (c Config) WithDefaults() Config {
	if c.RolesClaim == "" {
		c.RolesClaim = defaultRolesClaim
	}

	if c.AdminRole == "" {
		c.AdminRole = defaultAdminRole
	}

	return c
}
