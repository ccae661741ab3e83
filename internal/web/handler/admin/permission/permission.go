// Package permission provides the admin endpoints for the permission catalog.
package permission

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/auth"
	"github.com/motoworks/motoworks-rbac/internal/config"
	"github.com/motoworks/motoworks-rbac/internal/db/controller/permission"
	"github.com/motoworks/motoworks-rbac/internal/web/handler"
)

// Path is the base path for permission management.
const Path = handler.AdminPath + "/permissions"

// CreateRequest is the body of a permission create request.
type CreateRequest struct {
	Resource    string `json:"resource" validate:"required,max=50"`
	Action      string `json:"action" validate:"required,max=50"`
	Description string `json:"description" validate:"max=255"`
}

// Service manages the permission catalog.
type Service struct {
	handler.Service
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil || authService == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.authService = authService
	s.validator = validator.New()

	app.Get(Path,
		auth.RequirePermission(authService, auth.PermRolesRead),
		s.List,
	)
	app.Post(Path,
		auth.RequirePermission(authService, auth.PermRolesManage),
		s.Create,
	)
	app.Delete(Path+"/:id",
		auth.RequirePermission(authService, auth.PermRolesManage),
		s.Delete,
	)

	return nil
}

// List returns the whole catalog.
func (s *Service) List(c *fiber.Ctx) error {
	perms, err := permission.GetAll(s.db.WithContext(c.UserContext()))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(perms)
}

// Create adds a permission to the catalog.
func (s *Service) Create(c *fiber.Ctx) error {
	var in CreateRequest

	if err := handler.BindJSON(c, s.validator, &in); err != nil {
		return handler.Error(c, err)
	}

	p, err := s.authService.CreatePermission(c.UserContext(), in.Resource, in.Action, in.Description)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(p)
}

// Delete removes a permission. A permission still linked to roles or overrides is
// only removed with ?cascade=true.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamUint(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	if err = s.authService.DeletePermission(c.UserContext(), id, c.QueryBool("cascade")); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
