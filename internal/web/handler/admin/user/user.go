// Package user provides the admin endpoints for users, their roles and their overrides.
package user

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/auth"
	"github.com/motoworks/motoworks-rbac/internal/config"
	"github.com/motoworks/motoworks-rbac/internal/db/controller"
	"github.com/motoworks/motoworks-rbac/internal/db/controller/user"
	"github.com/motoworks/motoworks-rbac/internal/db/models"
	"github.com/motoworks/motoworks-rbac/internal/web/handler"
)

// Path is the base path for user management.
const Path = handler.AdminPath + "/users"

// ErrPermissionRequired is returned by the check endpoint without ?permission=.
var ErrPermissionRequired = fmt.Errorf("%w: permission query parameter is required", controller.ErrValidation)

// CreateRequest is the body of a user create request.
type CreateRequest struct {
	Username  string `json:"username" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=256"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Active    *bool  `json:"active"`
	RoleIDs   []uint `json:"role_ids" validate:"required,min=1"`
}

// RolesRequest replaces the role set of a user.
type RolesRequest struct {
	RoleIDs []uint `json:"role_ids" validate:"required"`
}

// OverrideRequest sets the direction of a user override.
type OverrideRequest struct {
	Granted *bool `json:"granted" validate:"required"`
}

// Detail is a user with their roles and overrides.
type Detail struct {
	models.User
	Roles     []models.Role           `json:"roles"`
	Overrides []models.UserPermission `json:"overrides"`
}

// Service manages users.
type Service struct {
	handler.Service
	cfg         *config.Config
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
	s.cfg = cfg
	s.authService = authService
	s.validator = validator.New()

	read := auth.RequirePermission(authService, auth.PermUsersRead)
	manage := auth.RequirePermission(authService, auth.PermUsersManage)

	app.Get(Path, read, s.List)
	app.Post(Path, manage, s.Create)
	app.Get(Path+"/:id", read, s.Get)
	app.Delete(Path+"/:id", manage, s.Delete)
	app.Get(Path+"/:id/roles", read, s.GetRoles)
	app.Put(Path+"/:id/roles", manage, s.SetRoles)
	app.Get(Path+"/:id/matrix", read, s.Matrix)
	app.Get(Path+"/:id/check", read, s.Check)
	app.Put(Path+"/:id/overrides/:permissionId", manage, s.SetOverride)
	app.Delete(Path+"/:id/overrides/:permissionId", manage, s.ClearOverride)

	return nil
}

// List returns all users.
func (s *Service) List(c *fiber.Ctx) error {
	users, err := user.GetAll(s.db.WithContext(c.UserContext()))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(users)
}

// Get returns one user with roles and overrides.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	db := s.db.WithContext(c.UserContext())

	u, err := user.Get(db, id)
	if err != nil {
		return handler.Error(c, err)
	}

	roles, err := user.Roles(db, id)
	if err != nil {
		return handler.Error(c, err)
	}

	overrides, err := user.Overrides(db, id)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(Detail{User: *u, Roles: roles, Overrides: overrides})
}

// Create adds a user with an initial role set.
func (s *Service) Create(c *fiber.Ctx) error {
	var in CreateRequest

	if err := handler.BindJSON(c, s.validator, &in); err != nil {
		return handler.Error(c, err)
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	u, err := s.authService.CreateUser(c.UserContext(), user.NewUser{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Active:    active,
	}, in.RoleIDs)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(u)
}

// Delete removes a user.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	if err = s.authService.DeleteUser(c.UserContext(), id); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetRoles returns the roles a user holds.
func (s *Service) GetRoles(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	roles, err := s.authService.UserRoles(c.UserContext(), id)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(roles)
}

// SetRoles replaces the role set of a user. The set may not be empty.
func (s *Service) SetRoles(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	var in RolesRequest

	if err = handler.BindJSON(c, s.validator, &in); err != nil {
		return handler.Error(c, err)
	}

	if err = s.authService.SetUserRoles(c.UserContext(), id, in.RoleIDs); err != nil {
		return handler.Error(c, err)
	}

	return s.GetRoles(c)
}

// Matrix returns the effective permission matrix of a user.
func (s *Service) Matrix(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	m, err := s.authService.BuildEffectiveMatrix(c.UserContext(), id)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(m)
}

// Check explains the decision for a single permission.
func (s *Service) Check(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	name := c.Query("permission")
	if name == "" {
		return handler.Error(c, ErrPermissionRequired)
	}

	d, err := s.authService.Decide(c.UserContext(), id, name)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(d)
}

// SetOverride grants or denies one permission for a user regardless of their roles.
func (s *Service) SetOverride(c *fiber.Ctx) error {
	id, permissionID, err := overrideParams(c)
	if err != nil {
		return handler.Error(c, err)
	}

	var in OverrideRequest

	if err = handler.BindJSON(c, s.validator, &in); err != nil {
		return handler.Error(c, err)
	}

	if err = s.authService.SetUserPermissionOverride(c.UserContext(), id, permissionID, *in.Granted); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ClearOverride removes a user override. Clearing a missing override succeeds.
func (s *Service) ClearOverride(c *fiber.Ctx) error {
	id, permissionID, err := overrideParams(c)
	if err != nil {
		return handler.Error(c, err)
	}

	if err = s.authService.ClearUserPermissionOverride(c.UserContext(), id, permissionID); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func overrideParams(c *fiber.Ctx) (uint64, uint, error) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return 0, 0, err
	}

	permissionID, err := handler.ParamUint(c, "permissionId")
	if err != nil {
		return 0, 0, err
	}

	return id, permissionID, nil
}
