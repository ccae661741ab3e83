package config

import (
	"time"

	"github.com/motoworks/motoworks-rbac/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	Title     string
	DB        DB
	Log       logger.Log
	Webserver Webserver
	Cache     Cache
	Seed      Seed
}

// Webserver implement webserver settings.
type Webserver struct {
	Port         int           // listening port for the webserver
	URL          string        // base url for the webserver
	ShutDownTime time.Duration // how long the health check reports 503 before the server stops
	Session      Session       // session settings
	// LoginRateLimit is the number of login attempts allowed per client IP and minute.
	LoginRateLimit int
}

// Cache configures the effective permission matrix cache.
type Cache struct {
	Enabled bool
	Size    int           // matrices kept, one per user
	TTL     time.Duration // upper bound on how long a matrix is reused
}

// Seed configures what is created on an empty database.
type Seed struct {
	Enabled       bool
	AdminUsername string
	AdminEmail    string
	// AdminPassword of the bootstrap admin. A random password is generated and
	// logged once when empty.
	AdminPassword string
}
