// Package login provides the local username/password login endpoint.
package login

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/auth"
	"github.com/motoworks/motoworks-rbac/internal/config"
	"github.com/motoworks/motoworks-rbac/internal/web/handler"
	"github.com/motoworks/motoworks-rbac/internal/web/session"
)

const (
	// Path is the path of the login endpoint.
	Path = handler.APIPath + "/login"
)

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

// Response is returned after a successful login.
type Response struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	provider  *auth.LocalProvider
	validator *validator.Validate
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.provider = auth.NewLocalProvider(db)
	s.validator = validator.New()

	limit := cfg.Webserver.LoginRateLimit
	if limit <= 0 {
		limit = 10
	}

	app.Post(Path, limiter.New(limiter.Config{
		Max:        limit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(handler.ErrorResponse{Error: ErrTooManyAttempts.Error()})
		},
	}), s.Post)

	return nil
}

// Post authenticates the credentials and starts a session.
func (s *Service) Post(c *fiber.Ctx) error {
	var in Credentials

	if err := handler.BindJSON(c, s.validator, &in); err != nil {
		return handler.Error(c, err)
	}

	u, err := s.provider.Authenticate(in.Username, in.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", in.Username).Str("ip", c.IP()).Msg("Login failed")
		return c.Status(fiber.StatusUnauthorized).JSON(handler.ErrorResponse{Error: ErrInvalidCredentials.Error()})
	}

	sessionID := session.GenerateSessionID()
	expiry := s.cfg.Webserver.Session.ExpiryTime

	if err = (&session.Data{UserID: u.ID, Username: u.Username}).Write(sessionID, expiry); err != nil {
		return handler.Error(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(expiry.Seconds()),
		Secure:   !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	log.Info().Uint64("user_id", u.ID).Str("username", u.Username).Msg("Login succeeded")

	return c.JSON(Response{UserID: u.ID, Username: u.Username})
}
