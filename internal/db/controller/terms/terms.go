// Package terms manages terms and conditions versions and their acceptance by users.
package terms

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/idam-admin/idam/internal/db/models"
)

var (
	// ErrTermsVersionNotFound is returned when a terms version is not found.
	ErrTermsVersionNotFound = errors.New("terms version not found")
	// ErrVersionDateZero is returned when publishing a version without a date.
	ErrVersionDateZero = errors.New("terms version date cannot be empty")
	// ErrUserNotFound is returned when the accepting user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// GetAll retrieves all versions, newest first.
func GetAll(db *gorm.DB) ([]models.TermsVersion, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	versions := []models.TermsVersion{}
	if result := db.Order("id DESC").Find(&versions); result.Error != nil {
		return nil, result.Error
	}

	return versions, nil
}

// Latest retrieves the most recently published version.
func Latest(db *gorm.DB) (*models.TermsVersion, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var v models.TermsVersion

	result := db.Order("id DESC").First(&v)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTermsVersionNotFound
		}

		return nil, result.Error
	}

	return &v, nil
}

// Publish creates a new version. Later versions get higher ids.
func Publish(db *gorm.DB, versionDate time.Time) (*models.TermsVersion, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if versionDate.IsZero() {
		return nil, ErrVersionDateZero
	}

	v := &models.TermsVersion{VersionDate: versionDate.UTC()}
	if result := db.Create(v); result.Error != nil {
		return nil, result.Error
	}

	return v, nil
}

// Accept records that userID accepted versionID. Accepting the same version again
// returns the existing record.
func Accept(db *gorm.DB, userID, versionID uint64) (*models.TermsAcceptance, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var acceptance models.TermsAcceptance

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.User{}, userID, ErrUserNotFound); err != nil {
			return err
		}

		if err := exists(tx, &models.TermsVersion{}, versionID, ErrTermsVersionNotFound); err != nil {
			return err
		}

		result := tx.Where("user_id = ? AND terms_version_id = ?", userID, versionID).First(&acceptance)

		switch {
		case result.Error == nil:
			return nil
		case !errors.Is(result.Error, gorm.ErrRecordNotFound):
			return result.Error
		}

		acceptance = models.TermsAcceptance{
			UserID:         userID,
			TermsVersionID: versionID,
			AcceptedAt:     time.Now().UTC(),
		}

		return tx.Omit("User", "TermsVersion").Create(&acceptance).Error
	})
	if err != nil {
		return nil, err
	}

	return &acceptance, nil
}

func exists(db *gorm.DB, model any, id uint64, notFound error) error {
	var n int64
	if result := db.Model(model).Where("id = ?", id).Count(&n); result.Error != nil {
		return result.Error
	}

	if n == 0 {
		return notFound
	}

	return nil
}
