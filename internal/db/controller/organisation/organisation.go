// Package organisation provides CRUD operations for organisations.
package organisation

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/idam-admin/idam/internal/db/models"
)

var (
	// ErrOrganisationNotFound is returned when an organisation is not found.
	ErrOrganisationNotFound = errors.New("organisation not found")
	// ErrOrganisationNameEmpty is returned when creating or updating an organisation with an empty name.
	ErrOrganisationNameEmpty = errors.New("organisation name cannot be empty")
	// ErrOrganisationAlreadyExists is returned when the name is taken by another organisation.
	ErrOrganisationAlreadyExists = errors.New("organisation already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves an organisation by its ID.
func Get(db *gorm.DB, id uint64) (*models.Organisation, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var org models.Organisation

	result := db.First(&org, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrganisationNotFound
		}

		return nil, result.Error
	}

	return &org, nil
}

// GetAll retrieves all organisations ordered by name.
func GetAll(db *gorm.DB) ([]models.Organisation, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	orgs := []models.Organisation{}
	if result := db.Order("name ASC").Find(&orgs); result.Error != nil {
		return nil, result.Error
	}

	return orgs, nil
}

// Create creates a new organisation.
func Create(db *gorm.DB, name string) (*models.Organisation, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrOrganisationNameEmpty
	}

	if err := checkNameFree(db, name, 0); err != nil {
		return nil, err
	}

	org := &models.Organisation{Name: name}
	if result := db.Create(org); result.Error != nil {
		return nil, result.Error
	}

	return org, nil
}

// Update renames an existing organisation.
func Update(db *gorm.DB, id uint64, name string) (*models.Organisation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrOrganisationNameEmpty
	}

	org, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	if err := checkNameFree(db, name, id); err != nil {
		return nil, err
	}

	org.Name = name
	if result := db.Save(org); result.Error != nil {
		return nil, result.Error
	}

	return org, nil
}

// Delete deletes an organisation by ID.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Organisation{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrOrganisationNotFound
	}

	return nil
}

func checkNameFree(db *gorm.DB, name string, self uint64) error {
	var existing models.Organisation

	result := db.Where("name = ?", name).First(&existing)

	switch {
	case result.Error == nil && existing.ID != self:
		return ErrOrganisationAlreadyExists
	case result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound):
		return result.Error
	}

	return nil
}
