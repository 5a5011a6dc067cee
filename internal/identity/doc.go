// Package identity holds the identity administration core.
//
// Reconciler decides whether an incoming identity creates a user, merges into an
// existing one or is rejected. RoleEngine maintains per-website role grants.
// Importer feeds legacy records through both. Service is the administrative surface
// used by the http api, it also pushes changes to the identity provider.
package identity
