// Package models contains the gorm model definitions.
//
// Relations are plain id fields. The optional association fields exist for
// preloading only; writes always go through the id fields.
package models

// All returns every model for auto migration, parents first.
func All() []any {
	return []any{
		&Organisation{},
		&Environment{},
		&Service{},
		&Website{},
		&Role{},
		&User{},
		&UserRole{},
		&TermsVersion{},
		&TermsAcceptance{},
	}
}
