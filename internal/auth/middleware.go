package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// LocalsUserID is the fiber.Locals key holding the authenticated user ID.
const LocalsUserID = "user_id"

const accessDenied = "access denied"

// CurrentUserID returns the authenticated user of the request, or 0.
func CurrentUserID(c *fiber.Ctx) uint64 {
	id, _ := c.Locals(LocalsUserID).(uint64)
	return id
}

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return gate(permission, func(c *fiber.Ctx, userID uint64) (bool, error) {
		return authService.IsGranted(c.UserContext(), userID, permission)
	})
}

// RequireAnyPermission creates Fiber middleware that requires at least one of the given permissions.
func RequireAnyPermission(authService *Service, permissions ...string) fiber.Handler {
	return gate(permissions, func(c *fiber.Ctx, userID uint64) (bool, error) {
		return authService.HasAnyPermission(c.UserContext(), userID, permissions)
	})
}

// RequireAllPermissions creates Fiber middleware that requires all of the given permissions.
func RequireAllPermissions(authService *Service, permissions ...string) fiber.Handler {
	return gate(permissions, func(c *fiber.Ctx, userID uint64) (bool, error) {
		return authService.HasAllPermissions(c.UserContext(), userID, permissions)
	})
}

// gate turns a check into middleware. Both a negative answer and a failed check end
// in the same 403 body, so clients never learn which rule refused them.
func gate(required any, check func(c *fiber.Ctx, userID uint64) (bool, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := CurrentUserID(c)
		if userID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		granted, err := check(c, userID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", userID).Interface("permission", required).
				Msg("Failed to check permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": accessDenied})
		}

		if !granted {
			log.Warn().Uint64("user_id", userID).Interface("permission", required).
				Msg("User lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": accessDenied})
		}

		return c.Next()
	}
}
