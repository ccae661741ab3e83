package me

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoworks/motoworks-rbac/internal/auth"
	"github.com/motoworks/motoworks-rbac/internal/web/handler/handlertest"
)

func TestGet(t *testing.T) {
	e := handlertest.New(t)
	app := e.App(t, e.Technician.ID, &Service{})

	var out Profile
	require.Equal(t, fiber.StatusOK, handlertest.Do(t, app, fiber.MethodGet, Path, "", &out))

	assert.Equal(t, "tech", out.User.Username)
	require.Len(t, out.Roles, 1)
	assert.Equal(t, "technician", out.Roles[0].Name)
}

func TestPermissions(t *testing.T) {
	e := handlertest.New(t)

	require.NoError(t, e.Auth.SetUserPermissionOverride(context.Background(),
		e.Technician.ID, e.Perms[auth.PermReportsRead].ID, true))
	require.NoError(t, e.Auth.SetUserPermissionOverride(context.Background(),
		e.Technician.ID, e.Perms[auth.PermServiceOrdersUpdate].ID, false))

	app := e.App(t, e.Technician.ID, &Service{})

	var out Permissions
	require.Equal(t, fiber.StatusOK, handlertest.Do(t, app, fiber.MethodGet, Path+"/permissions", "", &out))

	assert.ElementsMatch(t, []string{auth.PermServiceOrdersRead, auth.PermReportsRead}, out.Granted)
	assert.NotEmpty(t, out.Grid)
}

func TestGet_UnknownUser(t *testing.T) {
	e := handlertest.New(t)
	app := e.App(t, 999, &Service{})

	assert.Equal(t, fiber.StatusNotFound, handlertest.Do(t, app, fiber.MethodGet, Path, "", nil))
	assert.Equal(t, fiber.StatusNotFound, handlertest.Do(t, app, fiber.MethodGet, Path+"/permissions", "", nil))
}
