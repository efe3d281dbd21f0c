package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const identityLocal = "identity"

// Middleware validates the bearer token and stores the caller identity in the
// request locals.
func Middleware(service *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format. Use: Bearer <token>",
			})
		}

		identity, err := service.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(identityLocal, identity)
		return c.Next()
	}
}

// IdentityFrom returns the authenticated identity stored by Middleware, or nil
// on unauthenticated requests.
func IdentityFrom(c *fiber.Ctx) *Identity {
	identity, _ := c.Locals(identityLocal).(*Identity)
	return identity
}
