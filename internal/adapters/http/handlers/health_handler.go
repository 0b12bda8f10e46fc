package handlers

import (
	"os"

	"claimdesk/internal/config"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	uploadDir string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(uploadDir string) *HealthHandler {
	return &HealthHandler{uploadDir: uploadDir}
}

// HealthCheck reports storage reachability: the claims database and the
// upload directory.
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	dbStatus := "healthy"
	if err := config.HealthCheck(); err != nil {
		dbStatus = "unhealthy"
	}

	uploadStatus := "healthy"
	if info, err := os.Stat(h.uploadDir); err != nil || !info.IsDir() {
		uploadStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overall := "ok"
	if dbStatus != "healthy" || uploadStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"uploads":  uploadStatus,
		},
	})
}
