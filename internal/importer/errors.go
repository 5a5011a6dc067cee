package importer

import "errors"

var (
	// ErrLDAPDisabled is returned when the LDAP source is disabled via configuration.
	ErrLDAPDisabled = errors.New("ldap import is disabled")

	// ErrEmptyFile is returned when an import file contains no records.
	ErrEmptyFile = errors.New("import file contains no records")
)
