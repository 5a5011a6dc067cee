package models

import "time"

// TermsVersion is a published terms and conditions revision.
// Versions are ordered by ID.
type TermsVersion struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	VersionDate time.Time `gorm:"not null" json:"versionDate"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the database table name for the TermsVersion model.
func (TermsVersion) TableName() string {
	return "terms_versions"
}

// TermsAcceptance records that a user accepted a terms version.
type TermsAcceptance struct {
	ID             uint64        `gorm:"primaryKey" json:"id"`
	UserID         uint64        `gorm:"not null;index" json:"userId"`
	TermsVersionID uint64        `gorm:"not null;index" json:"termsVersionId"`
	AcceptedAt     time.Time     `gorm:"not null" json:"acceptedAt"`
	User           *User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TermsVersion   *TermsVersion `gorm:"foreignKey:TermsVersionID;constraint:OnDelete:RESTRICT" json:"-"`
}

// TableName specifies the database table name for the TermsAcceptance model.
func (TermsAcceptance) TableName() string {
	return "terms_acceptances"
}
