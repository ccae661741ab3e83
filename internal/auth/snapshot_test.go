package auth

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/db/dbtest"
)

// deleteBeforeOverrideRead deletes the user in its own committed transaction right
// before the first read of user_permissions issued by an evaluation.
func deleteBeforeOverrideRead(t *testing.T, db *gorm.DB, s *Service, userID uint64) *error {
	t.Helper()

	var (
		fired     atomic.Bool
		deleteErr error
	)

	err := db.Callback().Query().Before("gorm:query").Register("test:delete_user", func(tx *gorm.DB) {
		if tx.Statement.Table != "user_permissions" || !fired.CompareAndSwap(false, true) {
			return
		}

		deleteErr = s.DeleteUser(context.Background(), userID)
	})
	require.NoError(t, err)

	return &deleteErr
}

func TestDecide_ConcurrentDeleteKeepsDeny(t *testing.T) {
	w := newWorkshop(t)
	s := NewService(w.db)
	u := dbtest.User(t, w.db, "tech", w.technician)
	dbtest.Override(t, w.db, u, w.perms["service_orders:update"], false)

	deleteErr := deleteBeforeOverrideRead(t, w.db, s, u.ID)

	granted, err := s.IsGranted(context.Background(), u.ID, "service_orders:update")
	require.NoError(t, err)
	assert.False(t, granted)
	require.NoError(t, *deleteErr)

	_, err = s.IsGranted(context.Background(), u.ID, "service_orders:update")
	assert.True(t, IsNotFound(err))
}

func TestBuildEffectiveMatrix_ConcurrentDeleteKeepsDeny(t *testing.T) {
	w := newWorkshop(t)
	s := NewService(w.db)
	u := dbtest.User(t, w.db, "tech", w.technician)
	dbtest.Override(t, w.db, u, w.perms["service_orders:update"], false)

	deleteErr := deleteBeforeOverrideRead(t, w.db, s, u.ID)

	m, err := s.BuildEffectiveMatrix(context.Background(), u.ID)
	require.NoError(t, err)
	require.NoError(t, *deleteErr)

	d, ok := m.Lookup("service_orders:update")
	require.True(t, ok)
	assert.False(t, d.Effective)
	assert.Equal(t, []string{"technician"}, d.Roles)

	d, ok = m.Lookup("service_orders:read")
	require.True(t, ok)
	assert.True(t, d.Effective)
}
