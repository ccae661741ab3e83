package config

import "time"

// Supported values of DB.GormEngine.
const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// DB holds the database configuration settings.
type DB struct {
	GormEngine string // mysql, postgres or sqlite
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	Extras     string // appended to the DSN, e.g. "parseTime=true" or "sslmode=disable"
	Path       string // database file, sqlite only
	// SlowQueryThreshold makes statements slower than this log at warn level.
	SlowQueryThreshold time.Duration
}
