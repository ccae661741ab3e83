package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrUnsupportedEngine error if db.gormEngine names no known driver.
	ErrUnsupportedEngine = errors.New("config db.gormEngine must be mysql, postgres or sqlite")

	// ErrSQLitePathEmpty error if the sqlite engine is chosen without a file path.
	ErrSQLitePathEmpty = errors.New("config db.path can not be empty for sqlite")

	// ErrSeedAdminEmpty error if seeding is enabled without an admin username.
	ErrSeedAdminEmpty = errors.New("config seed.adminUsername can not be empty when seeding is enabled")
)
