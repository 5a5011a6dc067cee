package provider

import (
	"context"
	"time"
)

// CredentialTypeRefreshToken is the device credential type for issued refresh tokens.
const CredentialTypeRefreshToken = "refresh_token"

// UserAttributes are the user fields pushed to the provider on update.
type UserAttributes struct {
	Blocked       bool
	EmailVerified bool
	Email         string
	FirstName     string
	LastName      string
}

// DeviceCredential is a provider-side long-lived credential, e.g. a refresh token.
type DeviceCredential struct {
	ID         string `json:"id"`
	DeviceName string `json:"device_name"`
	Type       string `json:"type"`
	ClientID   string `json:"client_id"`
}

// BasicUserInfo is the minimal user projection returned by dashboard listings.
type BasicUserInfo struct {
	SubjectID    string    `json:"nameIdentifier"`
	EmailAddress string    `json:"emailAddress"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RecentUsers is the total user count plus the newest users.
type RecentUsers struct {
	Total int             `json:"total"`
	Users []BasicUserInfo `json:"users"`
}

// ManagementAPI is the provider surface the gateway depends on.
type ManagementAPI interface {
	AcquireManagementToken(ctx context.Context) (string, error)
	UpdateUserAttributes(ctx context.Context, subjectID string, attrs UserAttributes) error
	DeleteUser(ctx context.Context, subjectID string) error
	// ListDeviceCredentials returns one page (zero based) and whether the page was full.
	ListDeviceCredentials(ctx context.Context, subjectID, credentialType string, page, perPage int) ([]DeviceCredential, bool, error)
	DeleteDeviceCredential(ctx context.Context, credentialID string) error
	ListRecentUsers(ctx context.Context, count int) (RecentUsers, error)
}
