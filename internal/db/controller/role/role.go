// Package role provides CRUD operations for the roles a website defines.
package role

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/idam-admin/idam/internal/db/models"
)

var (
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNameEmpty is returned when creating or updating a role with an empty name.
	ErrRoleNameEmpty = errors.New("role name cannot be empty")
	// ErrRoleAlreadyExists is returned when the website already has a role with the name.
	ErrRoleAlreadyExists = errors.New("role already exists on this website")
	// ErrWebsiteNotFound is returned when the owning website does not exist.
	ErrWebsiteNotFound = errors.New("website not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Role is the writable part of a role. The owning website is fixed at creation.
type Role struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
	WebsiteID   uint64 `json:"websiteId"`
}

// Get retrieves a role by its ID.
func Get(db *gorm.DB, id uint64) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var r models.Role

	result := db.First(&r, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}

		return nil, result.Error
	}

	return &r, nil
}

// GetByWebsite retrieves the roles of a website ordered by name.
func GetByWebsite(db *gorm.DB, websiteID uint64) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	roles := []models.Role{}
	if result := db.Where("website_id = ?", websiteID).Order("name ASC").Find(&roles); result.Error != nil {
		return nil, result.Error
	}

	return roles, nil
}

// Create creates a role on in.WebsiteID.
func Create(db *gorm.DB, in Role) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	var n int64
	if result := db.Model(&models.Website{}).Where("id = ?", in.WebsiteID).Count(&n); result.Error != nil {
		return nil, result.Error
	}

	if n == 0 {
		return nil, ErrWebsiteNotFound
	}

	r := &models.Role{WebsiteID: in.WebsiteID}
	if err := checkNameFree(db, r, name); err != nil {
		return nil, err
	}

	r.Name = name
	r.Description = strings.TrimSpace(in.Description)

	if result := db.Create(r); result.Error != nil {
		return nil, result.Error
	}

	return r, nil
}

// Update renames a role and replaces its description. in.WebsiteID is ignored.
func Update(db *gorm.DB, id uint64, in Role) (*models.Role, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	r, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	if err := checkNameFree(db, r, name); err != nil {
		return nil, err
	}

	r.Name = name
	r.Description = strings.TrimSpace(in.Description)

	if result := db.Save(r); result.Error != nil {
		return nil, result.Error
	}

	return r, nil
}

// Delete deletes a role together with its grants.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Role{}, id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrRoleNotFound
		}

		return nil
	})
}

func checkNameFree(db *gorm.DB, r *models.Role, name string) error {
	var existing models.Role

	result := db.Where("website_id = ? AND name = ?", r.WebsiteID, name).First(&existing)

	switch {
	case result.Error == nil && existing.ID != r.ID:
		return ErrRoleAlreadyExists
	case result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound):
		return result.Error
	}

	return nil
}
