// Package daemon opens the database, prepares it and runs the web service.
package daemon

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/motoworks/motoworks-rbac/internal/auth"
	"github.com/motoworks/motoworks-rbac/internal/config"
	"github.com/motoworks/motoworks-rbac/internal/db/dsn"
	"github.com/motoworks/motoworks-rbac/internal/db/models"
	"github.com/motoworks/motoworks-rbac/internal/db/seed"
	gormlog "github.com/motoworks/motoworks-rbac/internal/logger/adapter/gorm"
	"github.com/motoworks/motoworks-rbac/internal/web"
	"github.com/motoworks/motoworks-rbac/internal/web/session"
)

// sessionTable holds login sessions on mysql and postgres.
const sessionTable = "sessions"

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	webService *web.Service
}

// OpenDB connects to the configured database and migrates the schema.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dsn.Dialector(cfg.DB)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlog.New(cfg.DB.SlowQueryThreshold),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect %s database", cfg.DB.GormEngine)
	}

	if err = db.AutoMigrate(models.All()...); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	return db, nil
}

// Seed loads the built-in catalog and runs the seeder on db.
func Seed(db *gorm.DB, cfg config.Seed) (seed.Result, error) {
	catalog, err := seed.DefaultCatalog()
	if err != nil {
		return seed.Result{}, err
	}

	return seed.Run(db, catalog, cfg)
}

// NewAuthService creates the permission engine, with the matrix cache if enabled.
func NewAuthService(cfg *config.Config, db *gorm.DB) *auth.Service {
	var opts []auth.Option

	if cfg.Cache.Enabled {
		opts = append(opts, auth.WithCache(cfg.Cache.Size, cfg.Cache.TTL))
	}

	return auth.NewService(db, opts...)
}

// sessionStorage keeps sessions next to the access data. SQLite deployments are
// single-instance and keep sessions in memory.
func sessionStorage(cfg config.DB) (fiber.Storage, error) {
	switch cfg.GormEngine {
	case config.EngineMySQL, config.EnginePostgres:
	default:
		return nil, nil
	}

	uri, err := dsn.Create(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.GormEngine == config.EngineMySQL {
		return sessionmysql.New(sessionmysql.Config{ConnectionURI: uri, Table: sessionTable}), nil
	}

	return sessionpostgres.New(sessionpostgres.Config{ConnectionURI: uri, Table: sessionTable}), nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Seed.Enabled {
		if _, err = Seed(db, cfg.Seed); err != nil {
			return nil, errors.Wrap(err, "failed to seed database")
		}
	}

	storage, err := sessionStorage(cfg.DB)
	if err != nil {
		return nil, err
	}

	session.Init(storage)

	webService, err := web.New(cfg, db, NewAuthService(cfg, db))
	if err != nil {
		return nil, err
	}

	return &Daemon{cfg: cfg, db: db, webService: webService}, nil
}

// Run serves until SIGINT or SIGTERM and then shuts down gracefully.
func (d *Daemon) Run() error {
	addr := ":" + strconv.Itoa(d.cfg.Webserver.Port)

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("Starting web service")

		if err := d.webService.Start(addr); err != nil {
			return fmt.Errorf("web service: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		d.webService.WaitShutdown(ctx)
		return nil
	})

	err := g.Wait()

	if dbErr := closeDB(d.db); dbErr != nil {
		log.Warn().Err(dbErr).Msg("failed to close database")
	}

	return err
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
