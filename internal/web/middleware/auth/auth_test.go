package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rbac "github.com/motoworks/motoworks-rbac/internal/auth"
	"github.com/motoworks/motoworks-rbac/internal/web/session"
)

func TestMiddleware(t *testing.T) {
	session.Init(nil)

	sid := session.GenerateSessionID()
	require.NoError(t, (&session.Data{UserID: 9, Username: "tech"}).Write(sid, time.Minute))

	app := fiber.New()
	app.Use(New("/public"))

	handler := func(c *fiber.Ctx) error {
		return c.SendString(strconv.FormatUint(rbac.CurrentUserID(c), 10) + "/" +
			strconv.FormatUint(rbac.ActorFrom(c.UserContext()), 10))
	}
	app.Get("/public", handler)
	app.Get("/private", handler)

	testCases := []struct {
		name           string
		path           string
		cookie         string
		expectedStatus int
		expectedBody   string
	}{
		{name: "public", path: "/public", expectedStatus: fiber.StatusOK, expectedBody: "0/0"},
		{name: "no cookie", path: "/private", expectedStatus: fiber.StatusUnauthorized},
		{name: "unknown session", path: "/private", cookie: "nope", expectedStatus: fiber.StatusUnauthorized},
		{name: "valid session", path: "/private", cookie: sid, expectedStatus: fiber.StatusOK, expectedBody: "9/9"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tc.path, http.NoBody)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tc.cookie})
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err)

			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)

			if tc.expectedBody != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tc.expectedBody, string(body))
			}
		})
	}
}
