//go:build integration

package auth

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/motoworks/motoworks-rbac/internal/db/controller/role"
	"github.com/motoworks/motoworks-rbac/internal/db/dbtest"
	"github.com/motoworks/motoworks-rbac/internal/db/models"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("rbac_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")

	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{TranslateError: true, Logger: logger.Discard})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(models.All()...))

	return db
}

func TestPostgres_ConcurrentRoleReplacement(t *testing.T) {
	db := setupPostgres(t)
	s := NewService(db, WithCache(16, time.Minute))
	ctx := context.Background()

	perms := []models.Permission{
		dbtest.Permission(t, db, "pos", "read"),
		dbtest.Permission(t, db, "pos", "create"),
		dbtest.Permission(t, db, "pos", "refund"),
		dbtest.Permission(t, db, "inventory", "read"),
	}
	cashier := dbtest.Role(t, db, "cashier", false, perms[0])
	u := dbtest.User(t, db, "till", cashier)

	targets := [][]uint{
		{perms[0].ID, perms[1].ID},
		{perms[2].ID, perms[3].ID},
		{perms[0].ID, perms[3].ID},
	}

	var wg sync.WaitGroup

	for i := range 12 {
		wg.Add(1)

		go func(target []uint) {
			defer wg.Done()

			if err := s.SetRolePermissions(ctx, cashier.ID, target); err != nil {
				assert.ErrorIs(t, err, ErrSetChanged)
			}
		}(targets[i%len(targets)])
	}

	wg.Wait()

	got, err := role.PermissionIDs(db, cashier.ID)
	require.NoError(t, err)

	// targets and got are both in ascending id order
	matched := slices.ContainsFunc(targets, func(target []uint) bool {
		return slices.Equal(target, got)
	})
	assert.True(t, matched, "final set %v is not one of the requested sets", got)

	names, err := s.GetUserPermissions(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, names, len(got))
}

func TestPostgres_OverrideUpsert(t *testing.T) {
	db := setupPostgres(t)
	s := NewService(db)
	ctx := context.Background()

	p := dbtest.Permission(t, db, "payroll", "approve")
	r := dbtest.Role(t, db, "finance", true, p)
	u := dbtest.User(t, db, "accountant", r)

	require.NoError(t, s.SetUserPermissionOverride(ctx, u.ID, p.ID, false))
	require.NoError(t, s.SetUserPermissionOverride(ctx, u.ID, p.ID, false))

	granted, err := s.IsGranted(ctx, u.ID, p.Name)
	require.NoError(t, err)
	assert.False(t, granted)

	require.NoError(t, s.ClearUserPermissionOverride(ctx, u.ID, p.ID))

	granted, err = s.IsGranted(ctx, u.ID, p.Name)
	require.NoError(t, err)
	assert.True(t, granted)
}
