// Package fiber provides the zerolog based HTTP access log middleware.
package fiber

import (
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/motoworks/motoworks-rbac/internal/logger"
)

// HeaderResponseTime carries the handler duration in seconds.
const HeaderResponseTime = "X-Response-Time"

// Config implements fiber middleware struct.
type Config struct {
	// Next defines a function to skip this middleware when returned true.
	//
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Log is the logger configuration; File.Access and the console flags are used.
	Log logger.Log
}

// New creates a new fiber access logging middleware using zerolog.
// Requests whose path is listed in Log.SkipPaths are served but not logged.
func New(cfg Config) fiber.Handler {
	var writers []io.Writer

	if cfg.Log.File.Enabled && cfg.Log.File.Access.Name != "" {
		if err := os.MkdirAll(cfg.Log.File.Path, 0o750); err != nil { //nolint:mnd
			log.Error().Err(err).Str("path", cfg.Log.File.Path).Msg("can't create log directory")
		} else {
			writers = append(writers, logger.NewRollingFile(cfg.Log.File.Path, cfg.Log.File.Access))
		}
	}

	if cfg.Log.Console.Enabled && cfg.Log.EnableAccessLogToConsole {
		if cfg.Log.Console.UseConsoleWriter {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{zerolog.LevelFieldName},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	accessLog := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			// let the app error handler write the response so the logged status is the real one
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		elapsed := time.Since(start).Seconds()
		c.Set(HeaderResponseTime, strconv.FormatFloat(elapsed, 'f', 6, 64))

		if slices.Contains(cfg.Log.SkipPaths, c.Path()) {
			return nil
		}

		// fasthttp normalizes the path, the raw request URI is what the client sent
		event := accessLog.Log().
			Str("ip", c.IP()).
			Int("status", c.Response().StatusCode()).
			Float64("elapsed", elapsed).
			Bytes("uri", c.Request().RequestURI()).
			Str("method", c.Method()).
			Bytes("host", c.Request().Host()).
			Str("user_agent", c.Get(fiber.HeaderUserAgent)).
			Str("forwarded_for", c.Get(fiber.HeaderXForwardedFor))

		if userID, ok := c.Locals("user_id").(uint64); ok {
			event = event.Uint64("user_id", userID)
		}

		if chainErr != nil {
			event = event.Err(chainErr)
		}

		event.Send()

		return nil
	}
}
