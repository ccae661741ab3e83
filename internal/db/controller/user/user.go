// Package user provides lookups of users together with their role memberships and overrides.
package user

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/db/controller"
	"github.com/motoworks/motoworks-rbac/internal/db/models"
)

const userIDQueryPattern = "user_id = ?"

var (
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = fmt.Errorf("user %w", controller.ErrNotFound)
	// ErrUserExists is returned when the username or email is already taken.
	ErrUserExists = fmt.Errorf("%w: user with username or email already exists", controller.ErrValidation)
	// ErrUsernameEmpty is returned when creating a user without a username.
	ErrUsernameEmpty = fmt.Errorf("%w: username cannot be empty", controller.ErrValidation)
)

// NewUser carries the attributes of a user to create.
type NewUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Active    bool
}

// Get retrieves a user by ID.
func Get(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var u models.User

	result := db.First(&u, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, id)
		}

		return nil, result.Error
	}

	return &u, nil
}

// GetByUsername retrieves a user by username.
func GetByUsername(db *gorm.DB, username string) (*models.User, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var u models.User

	result := db.Where("username = ?", username).First(&u)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrUserNotFound, username)
		}

		return nil, result.Error
	}

	return &u, nil
}

// GetAll returns all users ordered by username.
func GetAll(db *gorm.DB) ([]models.User, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var users []models.User

	if err := db.Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// Exists fails with ErrUserNotFound unless the user exists.
func Exists(db *gorm.DB, id uint64) error {
	if db == nil {
		return controller.ErrDBNil
	}

	var count int64

	if err := db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}

	if count == 0 {
		return fmt.Errorf("%w: id %d", ErrUserNotFound, id)
	}

	return nil
}

// Count returns the number of users.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, controller.ErrDBNil
	}

	var count int64

	err := db.Model(&models.User{}).Count(&count).Error

	return count, err
}

// Create inserts a user with an Argon2id hashed password. An empty password leaves
// the account without local login.
func Create(db *gorm.DB, in NewUser) (*models.User, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return nil, ErrUsernameEmpty
	}

	var existing models.User

	err := db.Where("username = ? OR email = ?", in.Username, in.Email).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	u := &models.User{
		Active:    in.Active,
		Username:  in.Username,
		Email:     strings.TrimSpace(in.Email),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}

	if in.Password != "" {
		u.Password = models.HashPassword(in.Password)
	}

	if err = db.Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}

		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

// Delete removes a user after explicitly deleting its role memberships and overrides.
// Callers run it inside a transaction.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return controller.ErrDBNil
	}

	if err := Exists(db, id); err != nil {
		return err
	}

	if err := db.Where(userIDQueryPattern, id).Delete(&models.UserRole{}).Error; err != nil {
		return err
	}

	if err := db.Where(userIDQueryPattern, id).Delete(&models.UserPermission{}).Error; err != nil {
		return err
	}

	result := db.Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d vanished during delete", controller.ErrConflict, id)
	}

	return nil
}

// RoleIDs returns the IDs of the roles a user holds.
func RoleIDs(db *gorm.DB, userID uint64) ([]uint, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var ids []uint

	err := db.Model(&models.UserRole{}).
		Where(userIDQueryPattern, userID).
		Order("role_id ASC").
		Pluck("role_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// Roles returns the roles a user holds ordered by name.
func Roles(db *gorm.DB, userID uint64) ([]models.Role, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var roles []models.Role

	err := db.Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name ASC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}

	return roles, nil
}

// Override returns the user's override for a permission, or nil if there is none.
func Override(db *gorm.DB, userID uint64, permissionID uint) (*models.UserPermission, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var overrides []models.UserPermission

	err := db.Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Limit(1).
		Find(&overrides).Error
	if err != nil {
		return nil, err
	}

	if len(overrides) == 0 {
		return nil, nil
	}

	return &overrides[0], nil
}

// Overrides returns all overrides of a user.
func Overrides(db *gorm.DB, userID uint64) ([]models.UserPermission, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var overrides []models.UserPermission

	if err := db.Where(userIDQueryPattern, userID).Order("permission_id ASC").Find(&overrides).Error; err != nil {
		return nil, err
	}

	return overrides, nil
}
