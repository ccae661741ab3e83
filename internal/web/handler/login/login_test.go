package login

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoworks/motoworks-rbac/internal/config"
	"github.com/motoworks/motoworks-rbac/internal/db/dbtest"
	"github.com/motoworks/motoworks-rbac/internal/db/models"
	"github.com/motoworks/motoworks-rbac/internal/web/handler"
	"github.com/motoworks/motoworks-rbac/internal/web/session"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Webserver: config.Webserver{
			Session:        config.Session{ExpiryTime: time.Minute},
			LoginRateLimit: 3,
		},
	}
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	session.Init(nil)

	db := dbtest.Open(t)

	u := dbtest.User(t, db, "alice")
	require.NoError(t, db.Model(&u).Update("password", models.HashPassword("secret")).Error)

	disabled := dbtest.User(t, db, "bob")
	require.NoError(t, db.Model(&disabled).Updates(map[string]any{
		"password": models.HashPassword("secret"),
		"active":   false,
	}).Error)

	app := fiber.New()

	var s Service
	require.NoError(t, s.Init(app, newTestConfig(), db, nil))

	return app
}

func post(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, Path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

func TestPost(t *testing.T) {
	testCases := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{name: "valid", body: `{"username":"alice","password":"secret"}`, expectedStatus: fiber.StatusOK},
		{name: "wrong password", body: `{"username":"alice","password":"nope"}`, expectedStatus: fiber.StatusUnauthorized},
		{name: "unknown user", body: `{"username":"carol","password":"secret"}`, expectedStatus: fiber.StatusUnauthorized},
		{name: "disabled user", body: `{"username":"bob","password":"secret"}`, expectedStatus: fiber.StatusUnauthorized},
		{name: "missing password", body: `{"username":"alice"}`, expectedStatus: fiber.StatusUnprocessableEntity},
		{name: "malformed body", body: `{`, expectedStatus: fiber.StatusUnprocessableEntity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t)

			resp := post(t, app, tc.body)
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)

			if tc.expectedStatus == fiber.StatusUnauthorized {
				var out handler.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
				assert.Equal(t, ErrInvalidCredentials.Error(), out.Error)
			}
		})
	}
}

func TestPost_StartsSession(t *testing.T) {
	app := newTestApp(t)

	resp := post(t, app, `{"username":"alice","password":"secret"}`)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "alice", out.Username)

	var cookie *http.Cookie

	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}

	require.NotNil(t, cookie, "session cookie not set")
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Len(t, cookie.Value, 43)

	var data session.Data
	require.NoError(t, data.Read(cookie.Value))
	assert.Equal(t, out.UserID, data.UserID)
}

func TestPost_RateLimited(t *testing.T) {
	app := newTestApp(t)

	for range 3 {
		resp := post(t, app, `{"username":"alice","password":"nope"}`)
		resp.Body.Close()
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	}

	resp := post(t, app, `{"username":"alice","password":"secret"}`)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
