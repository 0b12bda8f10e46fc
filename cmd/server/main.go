package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"claimdesk/internal/adapters/http/middleware"
	"claimdesk/internal/adapters/http/routes"
	"claimdesk/internal/adapters/persistence/models"
	"claimdesk/internal/adapters/persistence/repositories"
	"claimdesk/internal/config"
	"claimdesk/internal/core/services"
	"claimdesk/internal/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}
	log.Println("Database migration completed")

	// Ensure upload directory exists
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	// Login-attempt store, shared by the auth gate and the expiry sweep
	var attempts services.AttemptStore
	if cfg.Login.Backend == "memory" {
		attempts = ratelimit.NewMemoryStore()
	} else {
		attempts = repositories.NewLoginAttemptRepository(db)
	}

	// Start cron service sweeping expired login attempts
	cronService := services.NewCronService(attempts, cfg.Login.WindowMinutes)
	cronService.Start()
	defer cronService.Stop()

	// Create Fiber app with server-rendered views
	engine := html.New("./web/templates", ".html")
	app := fiber.New(fiber.Config{
		AppName:      "claimdesk",
		Views:        engine,
		BodyLimit:    cfg.Upload.MaxBytes,
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	if err := routes.Setup(app, db, attempts, cfg); err != nil {
		log.Fatalf("Failed to setup routes: %v", err)
	}

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped gracefully")
}
