package middleware

import (
	"strings"

	"claimdesk/internal/core/services"
	"claimdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the name of the admin session cookie
const SessionCookie = "admin_token"

// sessionToken extracts the admin session token from the cookie or the
// Authorization header.
func sessionToken(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookie); token != "" {
		return token
	}

	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// RequireAdmin guards API-style admin endpoints; failures get a structured
// 401 payload.
func RequireAdmin(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c)
		if token == "" {
			return response.Unauthorized(c, "Unauthorized")
		}

		claims, err := authService.Validate(token, c.IP(), c.Get("User-Agent"))
		if err != nil {
			return response.Unauthorized(c, "Unauthorized")
		}

		c.Locals("adminUser", claims.Username)
		return c.Next()
	}
}

// RequireAdminPage guards page-style admin endpoints; failures redirect to
// the login form.
func RequireAdminPage(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c)
		if token == "" {
			return c.Redirect("/admin/login", fiber.StatusFound)
		}

		claims, err := authService.Validate(token, c.IP(), c.Get("User-Agent"))
		if err != nil {
			return c.Redirect("/admin/login", fiber.StatusFound)
		}

		c.Locals("adminUser", claims.Username)
		return c.Next()
	}
}
