// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/motoworks/motoworks-rbac/internal/db/models"
)

// Open creates a migrated SQLite database in the test's temp dir.
// A file is used instead of ":memory:" because every pooled connection to
// ":memory:" would see its own empty database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err, "failed to create test database")

	require.NoError(t, db.AutoMigrate(models.All()...), "failed to migrate test database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// Permission inserts a catalog permission.
func Permission(t *testing.T, db *gorm.DB, resource, action string) models.Permission {
	t.Helper()

	p := models.Permission{Name: models.PermissionName(resource, action), Resource: resource, Action: action}
	require.NoError(t, db.Create(&p).Error)

	return p
}

// Role inserts a role linked to the given permissions.
func Role(t *testing.T, db *gorm.DB, name string, isSystem bool, perms ...models.Permission) models.Role {
	t.Helper()

	r := models.Role{Name: name, IsSystem: isSystem}
	require.NoError(t, db.Create(&r).Error)

	for _, p := range perms {
		require.NoError(t, db.Create(&models.RolePermission{RoleID: r.ID, PermissionID: p.ID}).Error)
	}

	return r
}

// User inserts an active user holding the given roles.
func User(t *testing.T, db *gorm.DB, username string, roles ...models.Role) models.User {
	t.Helper()

	u := models.User{Username: username, Email: username + "@example.com", Active: true}
	require.NoError(t, db.Create(&u).Error)

	for _, r := range roles {
		require.NoError(t, db.Create(&models.UserRole{UserID: u.ID, RoleID: r.ID}).Error)
	}

	return u
}

// Override inserts a user permission override.
func Override(t *testing.T, db *gorm.DB, u models.User, p models.Permission, granted bool) {
	t.Helper()

	require.NoError(t, db.Create(&models.UserPermission{UserID: u.ID, PermissionID: p.ID, Granted: granted}).Error)
}
