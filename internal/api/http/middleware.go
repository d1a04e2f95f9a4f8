package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/cloudwatchw/backend/internal/auth"
	"github.com/cloudwatchw/backend/internal/user"
)

const currentUserKey = "currentUser"

// RequireAuth verifies the bearer token and resolves it to a user record,
// which it stores in the request locals. Any failure is a plain 401 with no
// internal detail.
func RequireAuth(authn auth.Authenticator, users *user.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authorization header is required")
		}

		token := header
		if strings.HasPrefix(header, "Bearer ") {
			token = header[len("Bearer "):]
		}

		email, err := authn.VerifyToken(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "could not validate credentials")
		}

		u, err := users.FindByEmail(c.Context(), email)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "could not validate credentials")
		}

		c.Locals(currentUserKey, u)
		return c.Next()
	}
}

// currentUser returns the authenticated user stored by RequireAuth.
func currentUser(c *fiber.Ctx) *user.User {
	u, _ := c.Locals(currentUserKey).(*user.User)
	return u
}
