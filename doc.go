// Package main provides the entry point for the identity administration backend.
// The start command serves the REST API over fiber and keeps local users in sync
// with the external identity provider. The import command loads legacy user
// records from a JSON file or an LDAP directory.
package main
