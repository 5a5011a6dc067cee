package models

import "time"

// Role is a named permission set defined by exactly one website.
// The same name may exist under different websites.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Name is unique within the website.
	Name string `gorm:"size:100;not null;uniqueIndex:idx_roles_website_name,priority:2" json:"name"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255" json:"description"`
	// WebsiteID is the owning website.
	WebsiteID uint64 `gorm:"not null;uniqueIndex:idx_roles_website_name,priority:1" json:"websiteId"`
	// Website is loaded by preloading only.
	Website *Website `gorm:"foreignKey:WebsiteID;constraint:OnDelete:CASCADE" json:"-"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}
