// Package service provides CRUD operations for services, the application families websites belong to.
package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/idam-admin/idam/internal/db/models"
)

var (
	// ErrServiceNotFound is returned when a service is not found.
	ErrServiceNotFound = errors.New("service not found")
	// ErrServiceNameEmpty is returned when creating or updating a service with an empty name.
	ErrServiceNameEmpty = errors.New("service name cannot be empty")
	// ErrServiceAlreadyExists is returned when the name is taken by another service.
	ErrServiceAlreadyExists = errors.New("service already exists")
	// ErrServiceInUse is returned when deleting a service that still has websites.
	ErrServiceInUse = errors.New("service still has websites")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a service by its ID.
func Get(db *gorm.DB, id uint64) (*models.Service, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var svc models.Service

	result := db.First(&svc, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}

		return nil, result.Error
	}

	return &svc, nil
}

// GetAll retrieves all services ordered by name.
func GetAll(db *gorm.DB) ([]models.Service, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	services := []models.Service{}
	if result := db.Order("name ASC").Find(&services); result.Error != nil {
		return nil, result.Error
	}

	return services, nil
}

// Create creates a new service.
func Create(db *gorm.DB, name string) (*models.Service, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrServiceNameEmpty
	}

	if err := checkNameFree(db, name, 0); err != nil {
		return nil, err
	}

	svc := &models.Service{Name: name}
	if result := db.Create(svc); result.Error != nil {
		return nil, result.Error
	}

	return svc, nil
}

// Update renames an existing service.
func Update(db *gorm.DB, id uint64, name string) (*models.Service, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrServiceNameEmpty
	}

	svc, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	if err := checkNameFree(db, name, id); err != nil {
		return nil, err
	}

	svc.Name = name
	if result := db.Save(svc); result.Error != nil {
		return nil, result.Error
	}

	return svc, nil
}

// Delete deletes a service without websites.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	var websites int64
	if result := db.Model(&models.Website{}).Where("service_id = ?", id).Count(&websites); result.Error != nil {
		return result.Error
	}

	if websites > 0 {
		return ErrServiceInUse
	}

	result := db.Delete(&models.Service{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrServiceNotFound
	}

	return nil
}

func checkNameFree(db *gorm.DB, name string, self uint64) error {
	var existing models.Service

	result := db.Where("name = ?", name).First(&existing)

	switch {
	case result.Error == nil && existing.ID != self:
		return ErrServiceAlreadyExists
	case result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound):
		return result.Error
	}

	return nil
}
