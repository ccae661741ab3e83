// Package web wires the HTTP API: middleware, routes and graceful shutdown.
package web

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/auth"
	"github.com/motoworks/motoworks-rbac/internal/config"
	accesslog "github.com/motoworks/motoworks-rbac/internal/logger/adapter/fiber"
	"github.com/motoworks/motoworks-rbac/internal/web/handler"
	"github.com/motoworks/motoworks-rbac/internal/web/handler/admin/audit"
	"github.com/motoworks/motoworks-rbac/internal/web/handler/admin/permission"
	"github.com/motoworks/motoworks-rbac/internal/web/handler/admin/role"
	"github.com/motoworks/motoworks-rbac/internal/web/handler/admin/user"
	"github.com/motoworks/motoworks-rbac/internal/web/handler/login"
	"github.com/motoworks/motoworks-rbac/internal/web/handler/logout"
	"github.com/motoworks/motoworks-rbac/internal/web/handler/me"
	authmw "github.com/motoworks/motoworks-rbac/internal/web/middleware/auth"
)

const (
	// HealthPath answers 200 while serving and 503 while shutting down.
	HealthPath = "/healthz"
	// MetricsPath exposes the prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address and blocks until it stops.
func (s *Service) Start(addr string) error {
	if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// WaitShutdown blocks until SIGINT, SIGTERM or the end of ctx, then drains and stops the server.
func (s *Service) WaitShutdown(ctx context.Context) {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	defer signal.Stop(irqSig)

	select {
	case sig := <-irqSig:
		log.Info().Msgf("shutdown request (signal: %v)", sig)
	case <-ctx.Done():
		log.Info().Msg("shutdown request (context done)")
	}

	s.Shutdown()
}

// Shutdown marks the service unhealthy, waits the configured drain time and stops the server.
func (s *Service) Shutdown() {
	// Graceful shutdown for reverse proxies: the health check fails while the load balancer drains.
	s.alive.Store(false)

	if !s.fastShutDown && s.cfg.Webserver.ShutDownTime > 0 {
		log.Info().Msgf("graceful shutdown: returning 503 for %s to let the load balancer drain this instance",
			s.cfg.Webserver.ShutDownTime)
		time.Sleep(s.cfg.Webserver.ShutDownTime)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates the web service and registers every handler.
func New(cfg *config.Config, db *gorm.DB, authService *auth.Service) (*Service, error) {
	if cfg == nil || db == nil || authService == nil {
		return nil, errors.New(handler.ErrNilACDFatalLogMsg)
	}

	title := cfg.Title
	if title == "" {
		title = "motoworks-rbac"
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			ErrorHandler:   errorHandler,
		},
	)

	service := &Service{
		cfg:          cfg,
		App:          app,
		db:           db,
		authService:  authService,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	app.Use(accesslog.New(accesslog.Config{Log: cfg.Log}))

	app.Get(HealthPath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("ok")
	})
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	app.Use(handler.APIPath, authmw.New(login.Path))

	for _, h := range []handler.Service{
		&login.Handler,
		&logout.Handler,
		&me.Handler,
		&permission.Handler,
		&role.Handler,
		&user.Handler,
		&audit.Handler,
	} {
		if err := h.Init(app, cfg, db, authService); err != nil {
			return nil, err
		}
	}

	return service, nil
}

// errorHandler renders unhandled errors as JSON in the same shape as handler.Error.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	} else {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}

	return c.Status(code).JSON(handler.ErrorResponse{Error: msg})
}
