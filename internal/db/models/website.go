package models

import "time"

// Website is one deployment of a service in an environment.
// Host is the join key for role lookups by host.
type Website struct {
	ID            uint64       `gorm:"primaryKey" json:"id"`
	Host          string       `gorm:"size:255;not null;uniqueIndex" json:"host"`
	ServiceID     uint64       `gorm:"not null;index" json:"serviceId"`
	EnvironmentID uint64       `gorm:"not null;index" json:"environmentId"`
	Service       *Service     `gorm:"foreignKey:ServiceID;constraint:OnDelete:RESTRICT" json:"-"`
	Environment   *Environment `gorm:"foreignKey:EnvironmentID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// TableName specifies the database table name for the Website model.
func (Website) TableName() string {
	return "websites"
}
