// Package config handles input from etc/main.toml and the JSON environment override.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvConfigJSON names the environment variable whose JSON is merged over the file.
const EnvConfigJSON = "MOTOWORKS_RBAC_CONFIG_JSON"

const invalidErrMessage = "invalid config"

// ReadConfig from <path>/main.toml, then merges EnvConfigJSON over it.
func ReadConfig(path string) (Config, error) {
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(filepath.Join(path, "main.toml"))

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if envJSON := os.Getenv(EnvConfigJSON); envJSON != "" {
		v.SetConfigType("json")

		if err := v.MergeConfig(strings.NewReader(envJSON)); err != nil {
			return Config{}, errors.Wrap(err, "failed to merge config from "+EnvConfigJSON)
		}
	}

	var c Config

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}

	return c, validate(&c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("title", "MotoWorks RBAC")
	v.SetDefault("db.gormEngine", EngineMySQL)
	v.SetDefault("db.slowQueryThreshold", 200*time.Millisecond)
	v.SetDefault("log.logLevel", "info")
	v.SetDefault("log.appName", "motoworks-rbac")
	v.SetDefault("log.serviceName", "motoworks-rbac")
	v.SetDefault("log.skipPaths", []string{"/healthz", "/metrics"})
	v.SetDefault("webserver.shutDownTime", 5*time.Second)
	v.SetDefault("webserver.session.expiryTime", 8*time.Hour)
	v.SetDefault("webserver.loginRateLimit", 10)
	v.SetDefault("cache.size", 1024)
	v.SetDefault("cache.ttl", time.Minute)
	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.adminUsername", "admin")
	v.SetDefault("seed.adminEmail", "admin@localhost")
}

// DumpConfig config as TOML String.
func DumpConfig(c Config) (string, error) {
	out, err := toml.Marshal(c)
	if err != nil {
		return "", err //nolint: wrapcheck
	}

	return string(out), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c Config) (string, error) {
	var buffer bytes.Buffer

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate checks the settings the daemon cannot start without and fills
// zero values that have a safe default.
func validate(c *Config) error {
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case EngineMySQL, EnginePostgres:
	case EngineSQLite:
		if c.DB.Path == "" {
			return errors.Wrap(ErrSQLitePathEmpty, invalidErrMessage)
		}
	default:
		return errors.Wrap(ErrUnsupportedEngine, invalidErrMessage)
	}

	if c.Seed.Enabled && c.Seed.AdminUsername == "" {
		return errors.Wrap(ErrSeedAdminEmpty, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime <= 0 {
		c.Webserver.ShutDownTime = 5 * time.Second
	}

	if c.Webserver.Session.ExpiryTime <= 0 {
		c.Webserver.Session.ExpiryTime = 8 * time.Hour
	}

	return nil
}
