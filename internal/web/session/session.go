// Package session keeps server side login sessions in a fiber storage backend.
package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/motoworks/motoworks-rbac/internal/uniuri"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// ErrNoSession is returned when a session ID is unknown or expired.
var ErrNoSession = errors.New("session not found")

// Store is the global session store instance.
var Store *session.Store

// Data is what a session remembers about its user. Access decisions are never
// cached here; they are resolved on every request.
type Data struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
}

// Write stores the session data under sessionID for exp.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read loads the session data of sessionID.
func (s *Data) Read(sessionID string) error {
	if sessionID == "" {
		return ErrNoSession
	}

	raw, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	if len(raw) == 0 {
		return ErrNoSession
	}

	return json.Unmarshal(raw, s)
}

// Delete removes a session.
func Delete(sessionID string) error {
	return Store.Storage.Delete(sessionID)
}

// Init initializes the session store. A nil storage keeps sessions in memory.
func Init(storage fiber.Storage) {
	cfg := session.Config{}
	if storage != nil {
		cfg.Storage = storage
	}

	Store = session.New(cfg)
}

// GenerateSessionID generates a new random session ID.
func GenerateSessionID() string {
	return uniuri.NewLen(uniuri.SessionIDLen)
}
