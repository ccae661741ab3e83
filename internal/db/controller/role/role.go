// Package role provides lookups and maintenance of the role catalog.
package role

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/db/controller"
	"github.com/motoworks/motoworks-rbac/internal/db/models"
)

const (
	nameQueryPattern   = "name = ?"
	roleIDQueryPattern = "role_id = ?"
)

var (
	// ErrRoleNotFound is returned when a role does not exist.
	ErrRoleNotFound = fmt.Errorf("role %w", controller.ErrNotFound)
	// ErrRoleNameEmpty is returned when creating or renaming a role to an empty name.
	ErrRoleNameEmpty = fmt.Errorf("%w: role name cannot be empty", controller.ErrValidation)
	// ErrRoleExists is returned when a role name is already taken.
	ErrRoleExists = fmt.Errorf("%w: role already exists", controller.ErrValidation)
	// ErrSystemRole is returned when deleting a system role.
	ErrSystemRole = fmt.Errorf("%w: system roles cannot be deleted", controller.ErrValidation)
	// ErrSystemRoleRename is returned when renaming a system role.
	ErrSystemRoleRename = fmt.Errorf("%w: system roles cannot be renamed", controller.ErrValidation)
)

// Get retrieves a role by its ID.
func Get(db *gorm.DB, id uint) (*models.Role, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var r models.Role

	result := db.First(&r, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrRoleNotFound, id)
		}

		return nil, result.Error
	}

	return &r, nil
}

// GetByName retrieves a role by its unique name.
func GetByName(db *gorm.DB, name string) (*models.Role, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var r models.Role

	result := db.Where(nameQueryPattern, name).First(&r)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrRoleNotFound, name)
		}

		return nil, result.Error
	}

	return &r, nil
}

// GetAll returns all roles ordered by name.
func GetAll(db *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var roles []models.Role

	if err := db.Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}

	return roles, nil
}

// GetByIDs loads the given roles. It fails with ErrRoleNotFound if any ID is unknown.
func GetByIDs(db *gorm.DB, ids []uint) ([]models.Role, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	if len(ids) == 0 {
		return nil, nil
	}

	var roles []models.Role

	if err := db.Where("id IN ?", ids).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}

	found := make(map[uint]struct{}, len(roles))
	for _, r := range roles {
		found[r.ID] = struct{}{}
	}

	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, fmt.Errorf("%w: id %d", ErrRoleNotFound, id)
		}
	}

	return roles, nil
}

// Create adds a new role.
func Create(db *gorm.DB, name, description string, isSystem bool) (*models.Role, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	var existing models.Role

	result := db.Where(nameQueryPattern, name).First(&existing)
	if result.Error == nil {
		return nil, fmt.Errorf("%w: %q", ErrRoleExists, name)
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	r := &models.Role{
		Name:        name,
		Description: strings.TrimSpace(description),
		IsSystem:    isSystem,
	}

	if err := db.Create(r).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %q", ErrRoleExists, name)
		}

		return nil, err
	}

	return r, nil
}

// Update changes a role's name and description. System roles keep their name.
func Update(db *gorm.DB, id uint, name, description string) (*models.Role, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	r, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	if r.IsSystem && r.Name != name {
		return nil, ErrSystemRoleRename
	}

	if r.Name != name {
		var count int64
		if err = db.Model(&models.Role{}).Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
			return nil, err
		}

		if count > 0 {
			return nil, fmt.Errorf("%w: %q", ErrRoleExists, name)
		}
	}

	r.Name = name
	r.Description = strings.TrimSpace(description)

	if err = db.Save(r).Error; err != nil {
		return nil, controller.TranslateWriteError(err)
	}

	return r, nil
}

// PermissionIDs returns the IDs of the permissions linked to a role.
func PermissionIDs(db *gorm.DB, roleID uint) ([]uint, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var ids []uint

	err := db.Model(&models.RolePermission{}).
		Where(roleIDQueryPattern, roleID).
		Order("permission_id ASC").
		Pluck("permission_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// Permissions returns the permissions linked to a role ordered by name.
func Permissions(db *gorm.DB, roleID uint) ([]models.Permission, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var perms []models.Permission

	err := db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.name ASC").
		Find(&perms).Error
	if err != nil {
		return nil, err
	}

	return perms, nil
}

// HolderCount returns how many users hold a role.
func HolderCount(db *gorm.DB, roleID uint) (int64, error) {
	if db == nil {
		return 0, controller.ErrDBNil
	}

	var count int64

	if err := db.Model(&models.UserRole{}).Where(roleIDQueryPattern, roleID).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// Delete removes a non-system role. Its permission links and user memberships are
// deleted first, explicitly, so the result does not depend on database cascades.
// Callers run it inside a transaction.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return controller.ErrDBNil
	}

	r, err := Get(db, id)
	if err != nil {
		return err
	}

	if r.IsSystem {
		return fmt.Errorf("%w: %q", ErrSystemRole, r.Name)
	}

	if err = db.Where(roleIDQueryPattern, id).Delete(&models.RolePermission{}).Error; err != nil {
		return err
	}

	if err = db.Where(roleIDQueryPattern, id).Delete(&models.UserRole{}).Error; err != nil {
		return err
	}

	result := db.Delete(&models.Role{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: role %d vanished during delete", controller.ErrConflict, id)
	}

	return nil
}
