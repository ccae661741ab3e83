// Package permission provides lookups and maintenance of the permission catalog.
package permission

import (
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/db/controller"
	"github.com/motoworks/motoworks-rbac/internal/db/models"
)

const (
	nameQueryPattern = "name = ?"
	idQueryPattern   = "permission_id = ?"
)

var (
	// ErrPermissionNotFound is returned when a permission is not part of the catalog.
	ErrPermissionNotFound = fmt.Errorf("permission %w", controller.ErrNotFound)
	// ErrPermissionExists is returned when creating a permission whose name is already taken.
	ErrPermissionExists = fmt.Errorf("%w: permission already exists", controller.ErrValidation)
	// ErrInvalidName is returned when resource or action are not lower snake case.
	ErrInvalidName = fmt.Errorf("%w: resource and action must be lower snake case", controller.ErrValidation)
	// ErrPermissionInUse is returned when deleting a permission still referenced by roles or overrides.
	ErrPermissionInUse = fmt.Errorf("%w: permission is still assigned", controller.ErrValidation)
)

var partPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Get retrieves a permission by its name.
func Get(db *gorm.DB, name string) (*models.Permission, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var perm models.Permission

	result := db.Where(nameQueryPattern, name).First(&perm)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrPermissionNotFound, name)
		}

		return nil, result.Error
	}

	return &perm, nil
}

// GetByID retrieves a permission by its ID.
func GetByID(db *gorm.DB, id uint) (*models.Permission, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var perm models.Permission

	result := db.First(&perm, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrPermissionNotFound, id)
		}

		return nil, result.Error
	}

	return &perm, nil
}

// GetAll returns the whole catalog ordered by resource and action.
func GetAll(db *gorm.DB) ([]models.Permission, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var perms []models.Permission

	result := db.Order("resource ASC, action ASC").Find(&perms)
	if result.Error != nil {
		return nil, result.Error
	}

	return perms, nil
}

// GetByIDs loads the given permissions. It fails with ErrPermissionNotFound if any ID is unknown.
func GetByIDs(db *gorm.DB, ids []uint) ([]models.Permission, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	if len(ids) == 0 {
		return nil, nil
	}

	var perms []models.Permission

	if err := db.Where("id IN ?", ids).Find(&perms).Error; err != nil {
		return nil, err
	}

	found := make(map[uint]struct{}, len(perms))
	for _, p := range perms {
		found[p.ID] = struct{}{}
	}

	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, fmt.Errorf("%w: id %d", ErrPermissionNotFound, id)
		}
	}

	return perms, nil
}

// Create adds a permission named resource:action to the catalog.
func Create(db *gorm.DB, resource, action, description string) (*models.Permission, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	if !partPattern.MatchString(resource) || !partPattern.MatchString(action) {
		return nil, ErrInvalidName
	}

	name := models.PermissionName(resource, action)

	var existing models.Permission

	result := db.Where(nameQueryPattern, name).First(&existing)
	if result.Error == nil {
		return nil, fmt.Errorf("%w: %q", ErrPermissionExists, name)
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	perm := &models.Permission{
		Name:        name,
		Resource:    resource,
		Action:      action,
		Description: description,
	}

	if err := db.Create(perm).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %q", ErrPermissionExists, name)
		}

		return nil, err
	}

	return perm, nil
}

// InUse counts the role links and user overrides referencing a permission.
func InUse(db *gorm.DB, id uint) (int64, error) {
	if db == nil {
		return 0, controller.ErrDBNil
	}

	var links, overrides int64

	if err := db.Model(&models.RolePermission{}).Where(idQueryPattern, id).Count(&links).Error; err != nil {
		return 0, err
	}

	if err := db.Model(&models.UserPermission{}).Where(idQueryPattern, id).Count(&overrides).Error; err != nil {
		return 0, err
	}

	return links + overrides, nil
}

// DeleteReferences removes every role link and user override pointing at a permission.
func DeleteReferences(db *gorm.DB, id uint) error {
	if db == nil {
		return controller.ErrDBNil
	}

	if err := db.Where(idQueryPattern, id).Delete(&models.RolePermission{}).Error; err != nil {
		return err
	}

	return db.Where(idQueryPattern, id).Delete(&models.UserPermission{}).Error
}

// Delete removes an unreferenced permission from the catalog.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return controller.ErrDBNil
	}

	refs, err := InUse(db, id)
	if err != nil {
		return err
	}

	if refs > 0 {
		return fmt.Errorf("%w: %d references", ErrPermissionInUse, refs)
	}

	result := db.Delete(&models.Permission{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrPermissionNotFound, id)
	}

	return nil
}
