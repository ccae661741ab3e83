package role

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoworks/motoworks-rbac/internal/auth"
	"github.com/motoworks/motoworks-rbac/internal/db/models"
	"github.com/motoworks/motoworks-rbac/internal/web/handler/handlertest"
)

func rolePath(id uint) string {
	return Path + "/" + strconv.FormatUint(uint64(id), 10)
}

func TestListAndGet(t *testing.T) {
	e := handlertest.New(t)
	app := e.App(t, e.Admin.ID, &Service{})

	var roles []models.Role
	require.Equal(t, fiber.StatusOK, handlertest.Do(t, app, fiber.MethodGet, Path, "", &roles))
	assert.Len(t, roles, 2)

	var detail Detail
	require.Equal(t, fiber.StatusOK, handlertest.Do(t, app, fiber.MethodGet, rolePath(e.TechRole.ID), "", &detail))
	assert.Equal(t, "technician", detail.Name)
	assert.Len(t, detail.Permissions, 2)
	assert.EqualValues(t, 1, detail.Holders)

	assert.Equal(t, fiber.StatusNotFound, handlertest.Do(t, app, fiber.MethodGet, rolePath(999), "", nil))
}

func TestCreateUpdateDelete(t *testing.T) {
	e := handlertest.New(t)
	app := e.App(t, e.Admin.ID, &Service{})

	body := fmt.Sprintf(`{"name":"cashier","permission_ids":[%d]}`, e.Perms[auth.PermReportsRead].ID)

	var created models.Role
	require.Equal(t, fiber.StatusCreated, handlertest.Do(t, app, fiber.MethodPost, Path, body, &created))
	assert.False(t, created.IsSystem)

	assert.Equal(t, fiber.StatusUnprocessableEntity, handlertest.Do(t, app, fiber.MethodPost, Path, body, nil),
		"duplicate name")

	var updated models.Role
	require.Equal(t, fiber.StatusOK, handlertest.Do(t, app, fiber.MethodPut, rolePath(created.ID),
		`{"name":"front_desk","description":"counter staff"}`, &updated))
	assert.Equal(t, "front_desk", updated.Name)

	assert.Equal(t, fiber.StatusUnprocessableEntity, handlertest.Do(t, app, fiber.MethodPut, rolePath(e.AdminRole.ID),
		`{"name":"root"}`, nil), "system role rename")

	assert.Equal(t, fiber.StatusNoContent, handlertest.Do(t, app, fiber.MethodDelete, rolePath(created.ID), "", nil))
	assert.Equal(t, fiber.StatusUnprocessableEntity,
		handlertest.Do(t, app, fiber.MethodDelete, rolePath(e.AdminRole.ID)+"?confirm=true", "", nil), "system role delete")
}

func TestDelete_HeldRoleNeedsConfirm(t *testing.T) {
	e := handlertest.New(t)
	app := e.App(t, e.Admin.ID, &Service{})

	assert.Equal(t, fiber.StatusUnprocessableEntity,
		handlertest.Do(t, app, fiber.MethodDelete, rolePath(e.TechRole.ID), "", nil))
	assert.Equal(t, fiber.StatusNoContent,
		handlertest.Do(t, app, fiber.MethodDelete, rolePath(e.TechRole.ID)+"?confirm=true", "", nil))
}

func TestSetPermissions(t *testing.T) {
	e := handlertest.New(t)
	app := e.App(t, e.Admin.ID, &Service{})
	target := rolePath(e.TechRole.ID) + "/permissions"

	body := fmt.Sprintf(`{"permission_ids":[%d,%d]}`,
		e.Perms[auth.PermServiceOrdersRead].ID, e.Perms[auth.PermReportsRead].ID)

	var perms []models.Permission
	require.Equal(t, fiber.StatusOK, handlertest.Do(t, app, fiber.MethodPut, target, body, &perms))

	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.Name)
	}

	assert.ElementsMatch(t, []string{auth.PermServiceOrdersRead, auth.PermReportsRead}, names)

	assert.Equal(t, fiber.StatusOK, handlertest.Do(t, app, fiber.MethodPut, target, `{"permission_ids":[]}`, &perms))
	assert.Empty(t, perms)

	assert.Equal(t, fiber.StatusNotFound,
		handlertest.Do(t, app, fiber.MethodPut, target, `{"permission_ids":[999]}`, nil))
	assert.Equal(t, fiber.StatusUnprocessableEntity, handlertest.Do(t, app, fiber.MethodPut, target, `{}`, nil))
}

func TestTechnicianCannotManageRoles(t *testing.T) {
	e := handlertest.New(t)
	app := e.App(t, e.Technician.ID, &Service{})

	assert.Equal(t, fiber.StatusForbidden, handlertest.Do(t, app, fiber.MethodGet, Path, "", nil))
	assert.Equal(t, fiber.StatusForbidden, handlertest.Do(t, app, fiber.MethodPost, Path, `{"name":"x"}`, nil))
}
