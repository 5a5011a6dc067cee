package models

import "time"

// UserRole grants one role to one user. The row's existence is the grant.
type UserRole struct {
	// ID orders grants; claims and role listings follow it.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// UserID is the grantee.
	UserID uint64 `gorm:"not null;uniqueIndex:idx_user_roles_user_role,priority:1" json:"userId"`
	// RoleID is the granted role.
	RoleID uint64 `gorm:"not null;uniqueIndex:idx_user_roles_user_role,priority:2;index" json:"roleId"`
	// User is loaded by preloading only.
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	// Role is loaded by preloading only.
	Role *Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"role,omitempty"`
	// CreatedAt is the timestamp when the grant was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the database table name for the UserRole model.
func (UserRole) TableName() string {
	return "user_roles"
}
