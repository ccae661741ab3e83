package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/db/controller/user"
	"github.com/motoworks/motoworks-rbac/internal/db/models"
)

// LocalProvider handles local database authentication.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Authenticate authenticates a user against the local database.
func (p *LocalProvider) Authenticate(username, password string) (*models.User, error) {
	u, err := user.GetByUsername(p.db, username)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !u.Active {
		return nil, ErrUserAccountDisabled
	}

	if !u.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	return u, nil
}
