// Package me serves the logged in user's own profile and effective permissions.
package me

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/auth"
	"github.com/motoworks/motoworks-rbac/internal/config"
	"github.com/motoworks/motoworks-rbac/internal/db/controller/user"
	"github.com/motoworks/motoworks-rbac/internal/db/models"
	"github.com/motoworks/motoworks-rbac/internal/web/handler"
)

// Path is the base path of the current user endpoints.
const Path = handler.APIPath + "/me"

// Profile is the current user with the roles they hold.
type Profile struct {
	User  *models.User  `json:"user"`
	Roles []models.Role `json:"roles"`
}

// Permissions is the effective permission view of the current user.
type Permissions struct {
	Granted []string           `json:"granted"`
	Grid    []auth.ResourceRow `json:"grid"`
}

// Service serves /api/me.
type Service struct {
	handler.Service
	db          *gorm.DB
	authService *auth.Service
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

	app.Get(Path, s.Get)
	app.Get(Path+"/permissions", s.Permissions)

	return nil
}

// Get returns the profile of the current user.
func (s *Service) Get(c *fiber.Ctx) error {
	userID := auth.CurrentUserID(c)

	u, err := user.Get(s.db.WithContext(c.UserContext()), userID)
	if err != nil {
		return handler.Error(c, err)
	}

	roles, err := s.authService.UserRoles(c.UserContext(), userID)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(Profile{User: u, Roles: roles})
}

// Permissions returns the effective permission matrix of the current user.
func (s *Service) Permissions(c *fiber.Ctx) error {
	m, err := s.authService.BuildEffectiveMatrix(c.UserContext(), auth.CurrentUserID(c))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(Permissions{Granted: m.GrantedNames(), Grid: m.Grid()})
}
