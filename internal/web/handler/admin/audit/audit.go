// Package audit lists recorded access administration changes.
package audit

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/auth"
	"github.com/motoworks/motoworks-rbac/internal/config"
	"github.com/motoworks/motoworks-rbac/internal/web/handler"
)

const (
	// Path is the audit log path.
	Path = handler.AdminPath + "/audit"

	// MaxLimit caps the number of entries per request.
	MaxLimit = 1000
)

// Service serves the audit log.
type Service struct {
	handler.Service
	authService *auth.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, _ *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || authService == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.authService = authService

	app.Get(Path, auth.RequirePermission(authService, auth.PermUsersRead), s.List)

	return nil
}

// List returns the newest entries first. ?limit= defaults to 100.
func (s *Service) List(c *fiber.Ctx) error {
	limit := min(c.QueryInt("limit", 0), MaxLimit)

	entries, err := s.authService.AuditLog(c.UserContext(), limit)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(entries)
}
