package auth

import (
	"slices"

	"github.com/gofiber/fiber/v2"

	rbac "github.com/motoworks/motoworks-rbac/internal/auth"
	"github.com/motoworks/motoworks-rbac/internal/web/session"
)

// New returns middleware that resolves the session cookie to a user. Requests to
// publicPaths pass through untouched; every other request needs a valid session.
func New(publicPaths ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if slices.Contains(publicPaths, c.Path()) {
			return c.Next()
		}

		data := new(session.Data)
		if err := data.Read(c.Cookies(session.CookieName)); err != nil || data.UserID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		c.Locals(rbac.LocalsUserID, data.UserID)
		c.SetUserContext(rbac.WithActor(c.UserContext(), data.UserID))

		return c.Next()
	}
}
