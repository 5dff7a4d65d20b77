package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// OwnerLocalKey is the Fiber locals key holding the authenticated owner identity.
const OwnerLocalKey = "owner_id"

// TokenVerifier resolves a bearer token to the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Auth requires "Authorization: Bearer <token>" and stores the token subject under OwnerLocalKey.
// Failures surface as a 401 fiber.Error for the global error handler.
func Auth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		owner, err := v.Verify(strings.TrimSpace(token))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(OwnerLocalKey, owner)
		return c.Next()
	}
}

// Owner returns the identity stored by Auth, or "" outside an authenticated route.
func Owner(c *fiber.Ctx) string {
	s, _ := c.Locals(OwnerLocalKey).(string)
	return s
}
