package auth

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoworks/motoworks-rbac/internal/db/dbtest"
)

func TestMatrixCache_Disabled(t *testing.T) {
	c := newMatrixCache(0, time.Minute)
	assert.Nil(t, c)

	// nil cache is usable
	c.add(c.generation(), 1, &Matrix{})
	_, ok := c.get(1)
	assert.False(t, ok)
	c.purge()
}

func TestMatrixCache_StaleAddDropped(t *testing.T) {
	initMetrics()

	c := newMatrixCache(8, time.Minute)

	gen := c.generation()
	c.purge()
	c.add(gen, 1, &Matrix{UserID: 1})

	_, ok := c.get(1)
	assert.False(t, ok, "a matrix built before a purge must not be cached")

	c.add(c.generation(), 1, &Matrix{UserID: 1})

	m, ok := c.get(1)
	require.True(t, ok)
	assert.Equal(t, uint64(1), m.UserID)
}

func TestService_CacheInvalidatedByMutations(t *testing.T) {
	w := newWorkshop(t)
	s := NewService(w.db, WithCache(16, time.Minute))
	ctx := context.Background()
	u := dbtest.User(t, w.db, "tech", w.technician)

	hits := testutil.ToFloat64(cacheCounter.WithLabelValues("hit"))

	m1, err := s.BuildEffectiveMatrix(ctx, u.ID)
	require.NoError(t, err)

	m2, err := s.BuildEffectiveMatrix(ctx, u.ID)
	require.NoError(t, err)
	assert.Same(t, m1, m2)
	assert.Equal(t, hits+1, testutil.ToFloat64(cacheCounter.WithLabelValues("hit")))

	steps := []struct {
		name     string
		mutate   func() error
		expected bool
	}{
		{
			name: "override deny",
			mutate: func() error {
				return s.SetUserPermissionOverride(ctx, u.ID, w.perms["service_orders:update"].ID, false)
			},
			expected: false,
		},
		{
			name:     "override cleared",
			mutate:   func() error { return s.ClearUserPermissionOverride(ctx, u.ID, w.perms["service_orders:update"].ID) },
			expected: true,
		},
		{
			name:     "role set replaced",
			mutate:   func() error { return s.SetRolePermissions(ctx, w.technician.ID, ids(w.perms["service_orders:read"])) },
			expected: false,
		},
		{
			name:     "membership replaced",
			mutate:   func() error { return s.SetUserRoles(ctx, u.ID, []uint{w.technician.ID, w.manager.ID}) },
			expected: false,
		},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			// warm the cache
			_, err := s.BuildEffectiveMatrix(ctx, u.ID)
			require.NoError(t, err)

			require.NoError(t, step.mutate())

			granted, err := s.IsGranted(ctx, u.ID, "service_orders:update")
			require.NoError(t, err)
			assert.Equal(t, step.expected, granted)
		})
	}
}

func TestService_CachedDecideStillRejectsUnknownPermission(t *testing.T) {
	w := newWorkshop(t)
	s := NewService(w.db, WithCache(16, time.Minute))
	ctx := context.Background()
	u := dbtest.User(t, w.db, "tech", w.technician)

	_, err := s.BuildEffectiveMatrix(ctx, u.ID)
	require.NoError(t, err)

	_, err = s.IsGranted(ctx, u.ID, "bogus:read")
	require.Error(t, err)
}

func TestCountDecision(t *testing.T) {
	initMetrics()

	before := testutil.ToFloat64(decisionCounter.WithLabelValues("error"))
	countDecision(true, assert.AnError)
	assert.Equal(t, before+1, testutil.ToFloat64(decisionCounter.WithLabelValues("error")))
}
