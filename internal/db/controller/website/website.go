// Package website provides CRUD operations for websites, the relying parties roles belong to.
package website

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/idam-admin/idam/internal/db/models"
)

var (
	// ErrWebsiteNotFound is returned when a website is not found.
	ErrWebsiteNotFound = errors.New("website not found")
	// ErrWebsiteHostEmpty is returned when creating or updating a website with an empty host.
	ErrWebsiteHostEmpty = errors.New("website host cannot be empty")
	// ErrWebsiteAlreadyExists is returned when the host is taken by another website.
	ErrWebsiteAlreadyExists = errors.New("website already exists")
	// ErrServiceNotFound is returned when the referenced service does not exist.
	ErrServiceNotFound = errors.New("service not found")
	// ErrEnvironmentNotFound is returned when the referenced environment does not exist.
	ErrEnvironmentNotFound = errors.New("environment not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Website is the writable part of a website.
type Website struct {
	Host          string `json:"host"          validate:"required,hostname_rfc1123"`
	ServiceID     uint64 `json:"serviceId"     validate:"required"`
	EnvironmentID uint64 `json:"environmentId" validate:"required"`
}

// Get retrieves a website by its ID.
func Get(db *gorm.DB, id uint64) (*models.Website, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var site models.Website

	result := db.First(&site, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrWebsiteNotFound
		}

		return nil, result.Error
	}

	return &site, nil
}

// GetByHost retrieves a website by host, case-insensitively.
func GetByHost(db *gorm.DB, host string) (*models.Website, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	host = normalizeHost(host)
	if host == "" {
		return nil, ErrWebsiteHostEmpty
	}

	var site models.Website

	result := db.Where("LOWER(host) = ?", host).First(&site)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrWebsiteNotFound
		}

		return nil, result.Error
	}

	return &site, nil
}

// GetAll retrieves all websites ordered by host.
func GetAll(db *gorm.DB) ([]models.Website, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	sites := []models.Website{}
	if result := db.Order("host ASC").Find(&sites); result.Error != nil {
		return nil, result.Error
	}

	return sites, nil
}

// Create creates a new website.
func Create(db *gorm.DB, in Website) (*models.Website, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	site := &models.Website{}
	if err := apply(db, site, in); err != nil {
		return nil, err
	}

	if result := db.Create(site); result.Error != nil {
		return nil, result.Error
	}

	return site, nil
}

// Update changes host, service and environment of an existing website.
func Update(db *gorm.DB, id uint64, in Website) (*models.Website, error) {
	site, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	if err := apply(db, site, in); err != nil {
		return nil, err
	}

	if result := db.Save(site); result.Error != nil {
		return nil, result.Error
	}

	return site, nil
}

// Delete deletes a website with its roles and their grants.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		roles := tx.Model(&models.Role{}).Select("id").Where("website_id = ?", id)

		if err := tx.Where("role_id IN (?)", roles).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}

		if err := tx.Where("website_id = ?", id).Delete(&models.Role{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Website{}, id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrWebsiteNotFound
		}

		return nil
	})
}

func apply(db *gorm.DB, site *models.Website, in Website) error {
	host := normalizeHost(in.Host)
	if host == "" {
		return ErrWebsiteHostEmpty
	}

	existing, err := GetByHost(db, host)

	switch {
	case err == nil && existing.ID != site.ID:
		return ErrWebsiteAlreadyExists
	case err != nil && !errors.Is(err, ErrWebsiteNotFound):
		return err
	}

	if err := exists(db, &models.Service{}, in.ServiceID, ErrServiceNotFound); err != nil {
		return err
	}

	if err := exists(db, &models.Environment{}, in.EnvironmentID, ErrEnvironmentNotFound); err != nil {
		return err
	}

	site.Host = host
	site.ServiceID = in.ServiceID
	site.EnvironmentID = in.EnvironmentID

	return nil
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

func normalizeHost(host string) string {
	return strings.ToLower(strings.TrimSpace(host))
}
