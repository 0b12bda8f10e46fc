package handlers

import (
	"errors"
	"strings"
	"time"

	"claimdesk/internal/adapters/http/middleware"
	"claimdesk/internal/config"
	"claimdesk/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles admin authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// ShowLogin renders the admin login form
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return c.Render("admin_login", fiber.Map{
		"Error": c.Query("error"),
	})
}

// Login authenticates the admin credential form. Failure messages stay
// generic; the detailed reason is logged by the service.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	pass := c.FormValue("password")

	token, err := h.authService.Login(c.Context(), username, pass, c.IP(), c.Get("User-Agent"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRateLimited):
			return redirectWithError(c, "/admin/login", "Too many login attempts. Please try again later.")
		case errors.Is(err, services.ErrInvalidCredentials):
			return redirectWithError(c, "/admin/login", "Invalid username or password.")
		default:
			return redirectWithError(c, "/admin/login", "Login failed. Please try again.")
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   h.authService.SessionTTLSeconds(),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	return c.Redirect("/admin/dashboard", fiber.StatusFound)
}

// Logout clears the admin session cookie
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	return c.Redirect("/", fiber.StatusFound)
}
