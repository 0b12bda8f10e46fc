package routes

import (
	"log"

	"claimdesk/internal/adapters/http/handlers"
	"claimdesk/internal/adapters/http/middleware"
	"claimdesk/internal/adapters/persistence/repositories"
	"claimdesk/internal/config"
	"claimdesk/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application. The attempt store is
// created by the caller so the cron sweeper can share it.
func Setup(app *fiber.App, db *gorm.DB, attempts services.AttemptStore, cfg *config.Config) error {
	// Initialize repositories
	claimRepo := repositories.NewClaimRepository(db)

	// Initialize services
	claimService := services.NewClaimService(claimRepo, cfg.Upload.Dir)
	authService, err := services.NewAuthService(attempts, cfg)
	if err != nil {
		return err
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.Upload.Dir)
	claimHandler := handlers.NewClaimHandler(claimService, cfg)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	adminHandler := handlers.NewAdminHandler(claimService)

	// Public routes
	app.Get("/", claimHandler.Index)
	app.Post("/submit-claim", claimHandler.Submit)
	app.Get("/confirmation", claimHandler.Confirmation)
	app.Get("/health", healthHandler.HealthCheck)

	// Admin routes
	admin := app.Group("/admin")
	admin.Get("/login", authHandler.ShowLogin)
	admin.Post("/login", authHandler.Login)
	admin.Get("/logout", authHandler.Logout)

	// Page-style endpoints redirect to login on auth failure
	pageAuth := middleware.RequireAdminPage(authService)
	admin.Get("/dashboard", pageAuth, adminHandler.Dashboard)
	admin.Get("/download/:id", pageAuth, adminHandler.Download)
	admin.Get("/export", pageAuth, adminHandler.Export)

	// API-style endpoints return structured errors
	apiAuth := middleware.RequireAdmin(authService)
	admin.Get("/view/:id", apiAuth, adminHandler.View)
	admin.Post("/approve/:id", apiAuth, adminHandler.Approve)
	admin.Post("/reject/:id", apiAuth, adminHandler.Reject)

	log.Println("Routes configured")
	return nil
}
