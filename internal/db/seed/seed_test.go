package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoworks/motoworks-rbac/internal/config"
	"github.com/motoworks/motoworks-rbac/internal/db/controller/permission"
	"github.com/motoworks/motoworks-rbac/internal/db/controller/role"
	"github.com/motoworks/motoworks-rbac/internal/db/controller/user"
	"github.com/motoworks/motoworks-rbac/internal/db/dbtest"
	"github.com/motoworks/motoworks-rbac/internal/db/models"
)

var seedCfg = config.Seed{Enabled: true, AdminUsername: "admin", AdminEmail: "admin@localhost"}

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	names := make([]string, 0, len(c.Roles))
	for _, r := range c.Roles {
		names = append(names, r.Name)
	}

	assert.ElementsMatch(t, []string{"admin", "manager", "sales", "technician", "finance"}, names)
}

func TestParseCatalog_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{name: "not yaml", doc: "permissions: [\n"},
		{name: "no permissions", doc: "roles:\n  - name: x\n    all: true\n"},
		{name: "resource without actions", doc: "permissions:\n  - resource: pos\nroles:\n  - name: x\n    all: true\n"},
		{name: "role without permissions", doc: "permissions:\n  - resource: pos\n    actions: [read]\nroles:\n  - name: x\n"},
		{
			name: "unknown role permission",
			doc:  "permissions:\n  - resource: pos\n    actions: [read]\nroles:\n  - name: x\n    permissions: [\"pos:refund\"]\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tc.doc))
			require.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestRun(t *testing.T) {
	db := dbtest.Open(t)

	c, err := DefaultCatalog()
	require.NoError(t, err)

	res, err := Run(db, c, seedCfg)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Roles)
	assert.True(t, res.AdminCreated)
	assert.Len(t, res.AdminPassword, 20)

	all, err := permission.GetAll(db)
	require.NoError(t, err)
	assert.Len(t, all, res.Permissions)

	admin, err := role.GetByName(db, AdminRole)
	require.NoError(t, err)
	assert.True(t, admin.IsSystem)

	adminPerms, err := role.PermissionIDs(db, admin.ID)
	require.NoError(t, err)
	assert.Len(t, adminPerms, len(all))

	tech, err := role.GetByName(db, "technician")
	require.NoError(t, err)

	techPerms, err := role.Permissions(db, tech.ID)
	require.NoError(t, err)
	assert.Len(t, techPerms, 4)

	u, err := user.GetByUsername(db, "admin")
	require.NoError(t, err)
	assert.True(t, u.VerifyPassword(res.AdminPassword))

	roleIDs, err := user.RoleIDs(db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{admin.ID}, roleIDs)
}

func TestRun_Idempotent(t *testing.T) {
	db := dbtest.Open(t)

	c, err := DefaultCatalog()
	require.NoError(t, err)

	_, err = Run(db, c, config.Seed{Enabled: true, AdminUsername: "boss", AdminEmail: "boss@example.com", AdminPassword: "given"})
	require.NoError(t, err)

	// an administrator trims a shipped role
	tech, err := role.GetByName(db, "technician")
	require.NoError(t, err)
	require.NoError(t, db.Where("role_id = ?", tech.ID).Delete(&models.RolePermission{}).Error)

	res, err := Run(db, c, seedCfg)
	require.NoError(t, err)

	assert.Zero(t, res.Permissions)
	assert.Zero(t, res.Roles)
	assert.False(t, res.AdminCreated)
	assert.Empty(t, res.AdminPassword)

	techPerms, err := role.PermissionIDs(db, tech.ID)
	require.NoError(t, err)
	assert.Empty(t, techPerms, "seeding must not restore links removed by an administrator")

	count, err := user.Count(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRun_NewPermissionGoesToAllRoles(t *testing.T) {
	db := dbtest.Open(t)

	c, err := DefaultCatalog()
	require.NoError(t, err)

	_, err = Run(db, c, seedCfg)
	require.NoError(t, err)

	c.Permissions = append(c.Permissions, Resource{Resource: "warranty", Actions: []string{"read"}})

	res, err := Run(db, c, seedCfg)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Permissions)

	p, err := permission.Get(db, "warranty:read")
	require.NoError(t, err)

	admin, err := role.GetByName(db, AdminRole)
	require.NoError(t, err)

	ids, err := role.PermissionIDs(db, admin.ID)
	require.NoError(t, err)
	assert.Contains(t, ids, p.ID)
}
