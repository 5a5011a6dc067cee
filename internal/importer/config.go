package importer

import "github.com/idam-admin/idam/internal/db/models"

// Config holds the import settings.
type Config struct {
	// DefaultRoles are granted to every record read from LDAP.
	DefaultRoles []models.ImportRole
	// LDAP configures the legacy directory source.
	LDAP LDAPConfig
}

// LDAPConfig holds the legacy directory settings.
type LDAPConfig struct {
	// Enabled indicates if the LDAP source may be used.
	Enabled bool
	// Host is the LDAP server hostname or IP address.
	Host string
	// Port is the LDAP server port (typically 389 for LDAP, 636 for LDAPS).
	Port int
	// UseSSL enables LDAPS.
	UseSSL bool
	// UseTLS enables StartTLS on a plain connection.
	UseTLS bool
	// SkipVerify skips TLS certificate verification (insecure, for testing only).
	SkipVerify bool
	// BindDN is the distinguished name to bind with for searches.
	BindDN string
	// BindPassword is the password for the bind DN.
	BindPassword string
	// BaseDN is the base distinguished name for user searches.
	BaseDN string
	// UserFilter selects the users to import, e.g. "(objectClass=inetOrgPerson)".
	UserFilter string
	// SubjectIDAttr is copied to ImportUser.UserID when set.
	SubjectIDAttr string
	// EmailAttr is the attribute containing the email address (e.g., "mail").
	EmailAttr string
	// FirstNameAttr is the attribute containing the given name (e.g., "givenName").
	FirstNameAttr string
	// LastNameAttr is the attribute containing the surname (e.g., "sn").
	LastNameAttr string
	// Timeout is the connection and search timeout in seconds.
	Timeout int
	// PageSize is the LDAP paged search size.
	PageSize uint32
}

const (
	defaultEmailAttr     = "mail"
	defaultFirstNameAttr = "givenName"
	defaultLastNameAttr  = "sn"
	defaultUserFilter    = "(objectClass=inetOrgPerson)"
	defaultTimeout       = 10
	defaultPageSize      = 500
)

// WithDefaults fills unset attribute names, filter, timeout and page size.
func (c LDAPConfig) WithDefaults() LDAPConfig {
	if c.EmailAttr == "" {
		c.EmailAttr = defaultEmailAttr
	}

	if c.FirstNameAttr == "" {
		c.FirstNameAttr = defaultFirstNameAttr
	}

	if c.LastNameAttr == "" {
		c.LastNameAttr = defaultLastNameAttr
	}

	if c.UserFilter == "" {
		c.UserFilter = defaultUserFilter
	}

	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}

	if c.PageSize == 0 {
		c.PageSize = defaultPageSize
	}

	return c
}
