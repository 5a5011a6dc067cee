// Package environment provides CRUD operations for deployment environments.
package environment

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/idam-admin/idam/internal/db/models"
)

var (
	// ErrEnvironmentNotFound is returned when an environment is not found.
	ErrEnvironmentNotFound = errors.New("environment not found")
	// ErrEnvironmentNameEmpty is returned when creating or updating an environment with an empty name.
	ErrEnvironmentNameEmpty = errors.New("environment name cannot be empty")
	// ErrEnvironmentAlreadyExists is returned when the name is taken by another environment.
	ErrEnvironmentAlreadyExists = errors.New("environment already exists")
	// ErrEnvironmentInUse is returned when deleting an environment that still has websites.
	ErrEnvironmentInUse = errors.New("environment still has websites")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves an environment by its ID.
func Get(db *gorm.DB, id uint64) (*models.Environment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var env models.Environment

	result := db.First(&env, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrEnvironmentNotFound
		}

		return nil, result.Error
	}

	return &env, nil
}

// GetAll retrieves all environments in display order.
func GetAll(db *gorm.DB) ([]models.Environment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	envs := []models.Environment{}
	if result := db.Order("sort_order ASC").Order("name ASC").Find(&envs); result.Error != nil {
		return nil, result.Error
	}

	return envs, nil
}

// Create creates a new environment.
func Create(db *gorm.DB, name string, order int) (*models.Environment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEnvironmentNameEmpty
	}

	if err := checkNameFree(db, name, 0); err != nil {
		return nil, err
	}

	env := &models.Environment{Name: name, Order: order}
	if result := db.Create(env); result.Error != nil {
		return nil, result.Error
	}

	return env, nil
}

// Update changes name and display order of an existing environment.
func Update(db *gorm.DB, id uint64, name string, order int) (*models.Environment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEnvironmentNameEmpty
	}

	env, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	if err := checkNameFree(db, name, id); err != nil {
		return nil, err
	}

	env.Name = name
	env.Order = order

	if result := db.Save(env); result.Error != nil {
		return nil, result.Error
	}

	return env, nil
}

// Delete deletes an environment without websites.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	var websites int64
	if result := db.Model(&models.Website{}).Where("environment_id = ?", id).Count(&websites); result.Error != nil {
		return result.Error
	}

	if websites > 0 {
		return ErrEnvironmentInUse
	}

	result := db.Delete(&models.Environment{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrEnvironmentNotFound
	}

	return nil
}

func checkNameFree(db *gorm.DB, name string, self uint64) error {
	var existing models.Environment

	result := db.Where("name = ?", name).First(&existing)

	switch {
	case result.Error == nil && existing.ID != self:
		return ErrEnvironmentAlreadyExists
	case result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound):
		return result.Error
	}

	return nil
}
