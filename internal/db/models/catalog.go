package models

import "time"

// Organisation is an independent catalog entry.
type Organisation struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Organisation model.
func (Organisation) TableName() string {
	return "organisations"
}

// Service is a logical application family, e.g. "Portal".
type Service struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Service model.
func (Service) TableName() string {
	return "services"
}

// Environment is a deployment tier. Order sorts tiers for display.
type Environment struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Order     int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Environment model.
func (Environment) TableName() string {
	return "environments"
}
