package models

import (
	"strings"
	"time"
)

// User represents an administrated identity.
// A user created by an import carries no subject id until the first login
// through the identity provider binds one.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// SubjectID is the identity provider subject ("nameIdentifier"). NULL until bound.
	SubjectID *string `gorm:"size:255;uniqueIndex" json:"nameIdentifier,omitempty"`
	// EmailAddress is not unique on its own, see identity.Reconciler.
	EmailAddress string `gorm:"size:255;not null;index" json:"emailAddress"`
	// FirstName is the user's first or given name.
	FirstName string `gorm:"size:100" json:"firstName"`
	// LastName is the user's last or family name.
	LastName string `gorm:"size:100" json:"lastName"`
	// IsMigrated marks a legacy account imported before provider onboarding.
	IsMigrated bool `gorm:"not null;default:false" json:"isMigrated"`
	// IsInAuthenticationProvider is true once the account exists at the identity provider.
	IsInAuthenticationProvider bool `gorm:"not null;default:false" json:"isInAuthenticationProvider"`
	// IsLockedOut blocks the account at the identity provider.
	IsLockedOut bool `gorm:"not null;default:false" json:"isLockedOut"`
	// HasVerifiedEmailAddress mirrors the provider's email_verified flag.
	HasVerifiedEmailAddress bool `gorm:"not null;default:false" json:"hasVerifiedEmailAddress"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// Subject returns the bound subject id or "".
func (u *User) Subject() string {
	if u.SubjectID == nil {
		return ""
	}

	return *u.SubjectID
}

// HasSubject reports whether a subject id is bound.
func (u *User) HasSubject() bool {
	return u.Subject() != ""
}

// SetSubject binds id. An empty id clears the binding.
func (u *User) SetSubject(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		u.SubjectID = nil

		return
	}

	u.SubjectID = &id
}

// FullName is "first last" without surrounding blanks.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
