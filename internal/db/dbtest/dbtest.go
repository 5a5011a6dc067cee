// Package dbtest opens migrated in-memory databases and seeds fixtures for tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/idam-admin/idam/internal/db/models"
)

// Open returns a fresh, migrated in-memory SQLite database.
// The pool is limited to one connection so every query sees the same memory database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))

	return db
}

// Website creates a website for host together with its service and environment.
func Website(t testing.TB, db *gorm.DB, host string) *models.Website {
	t.Helper()

	service := models.Service{Name: "service " + host}
	require.NoError(t, db.Create(&service).Error)

	environment := models.Environment{Name: "environment " + host}
	require.NoError(t, db.Create(&environment).Error)

	website := models.Website{Host: host, ServiceID: service.ID, EnvironmentID: environment.ID}
	require.NoError(t, db.Create(&website).Error)

	return &website
}

// Role creates a role named name on website.
func Role(t testing.TB, db *gorm.DB, website *models.Website, name string) *models.Role {
	t.Helper()

	role := models.Role{Name: name, WebsiteID: website.ID, Description: name + " on " + website.Host}
	require.NoError(t, db.Create(&role).Error)

	return &role
}

// User creates a user. subject may be empty for a user without provider binding.
func User(t testing.TB, db *gorm.DB, subject, email, first, last string) *models.User {
	t.Helper()

	user := models.User{EmailAddress: email, FirstName: first, LastName: last}
	user.SetSubject(subject)
	user.IsInAuthenticationProvider = user.HasSubject()

	require.NoError(t, db.Create(&user).Error)

	return &user
}

// MigratedUser creates a legacy user without provider binding.
func MigratedUser(t testing.TB, db *gorm.DB, email, first, last string) *models.User {
	t.Helper()

	user := models.User{EmailAddress: email, FirstName: first, LastName: last, IsMigrated: true}
	require.NoError(t, db.Create(&user).Error)

	return &user
}

// Grant gives role to user.
func Grant(t testing.TB, db *gorm.DB, user *models.User, role *models.Role) *models.UserRole {
	t.Helper()

	userRole := models.UserRole{UserID: user.ID, RoleID: role.ID}
	require.NoError(t, db.Omit("User", "Role").Create(&userRole).Error)

	return &userRole
}

// AcceptTerms creates terms versions up to version and records the user's acceptance of it.
func AcceptTerms(t testing.TB, db *gorm.DB, user *models.User, version uint64) *models.TermsAcceptance {
	t.Helper()

	var existing int64
	require.NoError(t, db.Model(&models.TermsVersion{}).Count(&existing).Error)

	for i := uint64(existing) + 1; i <= version; i++ {
		tv := models.TermsVersion{ID: i, VersionDate: time.Date(2020, 1, int(i), 0, 0, 0, 0, time.UTC)}
		require.NoError(t, db.Create(&tv).Error, fmt.Sprintf("terms version %d", i))
	}

	acceptance := models.TermsAcceptance{UserID: user.ID, TermsVersionID: version, AcceptedAt: time.Now().UTC()}
	require.NoError(t, db.Omit("User", "TermsVersion").Create(&acceptance).Error)

	return &acceptance
}

// CountUsers returns the number of user rows.
func CountUsers(t testing.TB, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)

	return n
}

// CountUserRoles returns the number of grants of user.
func CountUserRoles(t testing.TB, db *gorm.DB, userID uint64) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&models.UserRole{}).Where("user_id = ?", userID).Count(&n).Error)

	return n
}
