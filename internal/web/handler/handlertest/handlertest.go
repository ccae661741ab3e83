// Package handlertest builds fiber apps with a seeded access catalog for handler tests.
package handlertest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/auth"
	"github.com/motoworks/motoworks-rbac/internal/config"
	"github.com/motoworks/motoworks-rbac/internal/db/dbtest"
	"github.com/motoworks/motoworks-rbac/internal/db/models"
	"github.com/motoworks/motoworks-rbac/internal/web/handler"
)

// Env is a test database with an admin and a technician account.
type Env struct {
	DB         *gorm.DB
	Auth       *auth.Service
	Cfg        *config.Config
	Perms      map[string]models.Permission
	AdminRole  models.Role
	TechRole   models.Role
	Admin      models.User
	Technician models.User
}

// New seeds the administration permissions plus a few workshop permissions.
// The admin role holds everything, the technician role only service order access.
func New(t *testing.T) *Env {
	t.Helper()

	db := dbtest.Open(t)
	e := &Env{DB: db, Auth: auth.NewService(db), Cfg: &config.Config{DevMode: true}, Perms: make(map[string]models.Permission)}

	for _, name := range []string{
		auth.PermUsersRead, auth.PermUsersManage, auth.PermRolesRead, auth.PermRolesManage,
		auth.PermServiceOrdersRead, auth.PermServiceOrdersUpdate, auth.PermReportsRead,
	} {
		resource, action, _ := strings.Cut(name, models.PermissionNameSeparator)
		e.Perms[name] = dbtest.Permission(t, db, resource, action)
	}

	all := make([]models.Permission, 0, len(e.Perms))
	for _, p := range e.Perms {
		all = append(all, p)
	}

	e.AdminRole = dbtest.Role(t, db, "admin", true, all...)
	e.TechRole = dbtest.Role(t, db, "technician", false,
		e.Perms[auth.PermServiceOrdersRead], e.Perms[auth.PermServiceOrdersUpdate])
	e.Admin = dbtest.User(t, db, "admin", e.AdminRole)
	e.Technician = dbtest.User(t, db, "tech", e.TechRole)

	return e
}

// App returns a fiber app acting as userID (0 for anonymous) with svc initialized on it.
func (e *Env) App(t *testing.T, userID uint64, svc handler.Service) *fiber.App {
	t.Helper()

	app := fiber.New()

	app.Use(func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals(auth.LocalsUserID, userID)
			c.SetUserContext(auth.WithActor(context.Background(), userID))
		}

		return c.Next()
	})

	require.NoError(t, svc.Init(app, e.Cfg, e.DB, e.Auth))

	return app
}

// Do sends a request with an optional JSON body and decodes a JSON response into out, if given.
func Do(t *testing.T, app *fiber.App, method, target, body string, out any) int {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}
