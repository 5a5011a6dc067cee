// Package importer reads legacy user records for the identity importer.
//
// Records come either from a JSON file (ReadFile) or from a legacy LDAP directory
// (LDAPSource). Both produce models.ImportUser values; persisting them is the job of
// identity.Importer.
package importer
