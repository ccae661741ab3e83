// Package role provides the admin endpoints for roles and their permission sets.
package role

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/auth"
	"github.com/motoworks/motoworks-rbac/internal/config"
	"github.com/motoworks/motoworks-rbac/internal/db/controller/role"
	"github.com/motoworks/motoworks-rbac/internal/db/models"
	"github.com/motoworks/motoworks-rbac/internal/web/handler"
)

// Path is the base path for role management.
const Path = handler.AdminPath + "/roles"

// CreateRequest is the body of a role create request.
type CreateRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	Description   string `json:"description" validate:"max=255"`
	PermissionIDs []uint `json:"permission_ids"`
}

// UpdateRequest is the body of a role update request.
type UpdateRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
}

// PermissionsRequest replaces the permission set of a role. An empty list is allowed.
type PermissionsRequest struct {
	PermissionIDs []uint `json:"permission_ids" validate:"required"`
}

// Detail is a role with its permission set.
type Detail struct {
	models.Role
	Permissions []models.Permission `json:"permissions"`
	Holders     int64               `json:"holders"`
}

// Service manages roles.
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

	read := auth.RequirePermission(authService, auth.PermRolesRead)
	manage := auth.RequirePermission(authService, auth.PermRolesManage)

	app.Get(Path, read, s.List)
	app.Post(Path, manage, s.Create)
	app.Get(Path+"/:id", read, s.Get)
	app.Put(Path+"/:id", manage, s.Update)
	app.Delete(Path+"/:id", manage, s.Delete)
	app.Get(Path+"/:id/permissions", read, s.GetPermissions)
	app.Put(Path+"/:id/permissions", manage, s.SetPermissions)

	return nil
}

// List returns all roles.
func (s *Service) List(c *fiber.Ctx) error {
	roles, err := role.GetAll(s.db.WithContext(c.UserContext()))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(roles)
}

// Get returns one role with its permissions and holder count.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParamUint(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	db := s.db.WithContext(c.UserContext())

	r, err := role.Get(db, id)
	if err != nil {
		return handler.Error(c, err)
	}

	perms, err := role.Permissions(db, r.ID)
	if err != nil {
		return handler.Error(c, err)
	}

	holders, err := role.HolderCount(db, r.ID)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(Detail{Role: *r, Permissions: perms, Holders: holders})
}

// Create adds a role.
func (s *Service) Create(c *fiber.Ctx) error {
	var in CreateRequest

	if err := handler.BindJSON(c, s.validator, &in); err != nil {
		return handler.Error(c, err)
	}

	r, err := s.authService.CreateRole(c.UserContext(), in.Name, in.Description, in.PermissionIDs)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(r)
}

// Update renames a role or changes its description.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParamUint(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	var in UpdateRequest

	if err = handler.BindJSON(c, s.validator, &in); err != nil {
		return handler.Error(c, err)
	}

	r, err := s.authService.UpdateRole(c.UserContext(), id, in.Name, in.Description)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(r)
}

// Delete removes a role. A role that users still hold needs ?confirm=true.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamUint(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	if err = s.authService.DeleteRole(c.UserContext(), id, c.QueryBool("confirm")); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetPermissions returns the permissions linked to a role.
func (s *Service) GetPermissions(c *fiber.Ctx) error {
	id, err := handler.ParamUint(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	db := s.db.WithContext(c.UserContext())

	if _, err = role.Get(db, id); err != nil {
		return handler.Error(c, err)
	}

	perms, err := role.Permissions(db, id)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(perms)
}

// SetPermissions replaces the permission set of a role.
func (s *Service) SetPermissions(c *fiber.Ctx) error {
	id, err := handler.ParamUint(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	var in PermissionsRequest

	if err = handler.BindJSON(c, s.validator, &in); err != nil {
		return handler.Error(c, err)
	}

	if err = s.authService.SetRolePermissions(c.UserContext(), id, in.PermissionIDs); err != nil {
		return handler.Error(c, err)
	}

	return s.GetPermissions(c)
}
