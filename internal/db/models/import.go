package models

// ImportRole names a role to grant by (role name, website host).
type ImportRole struct {
	RoleName    string `json:"roleName"    validate:"required"`
	WebsiteHost string `json:"websiteHost" validate:"required"`
}

// ImportUser is one legacy record fed to the importer. It is never stored as is.
type ImportUser struct {
	// UserID is the external id. A user already bound to it as subject id is matched first.
	UserID       string       `json:"userId"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	EmailAddress string       `json:"emailAddress" validate:"required,email"`
	Roles        []ImportRole `json:"roles"        validate:"dive"`
}
