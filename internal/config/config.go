package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	Admin    AdminConfig
	Session  SessionConfig
	Upload   UploadConfig
	Login    LoginLimitConfig
	Cookie   CookieConfig
}

// DatabaseConfig holds database configuration. Driver selects between the
// embedded sqlite file (default) and a MySQL server.
type DatabaseConfig struct {
	Driver     string
	SQLitePath string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
}

// AdminConfig holds the single staff credential pair
type AdminConfig struct {
	Username string
	Password string
}

// SessionConfig holds session token configuration
type SessionConfig struct {
	Secret     string
	TTLMinutes int
}

// UploadConfig holds attachment storage configuration
type UploadConfig struct {
	Dir      string
	MaxBytes int
}

// LoginLimitConfig holds the admin login rate-limit window. Backend picks
// the attempt store: "database" (shared across workers) or "memory".
type LoginLimitConfig struct {
	MaxAttempts   int
	WindowMinutes int
	Backend       string
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	driver := getEnv("DB_DRIVER", "sqlite")
	if driver != "sqlite" && driver != "mysql" {
		return nil, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'sqlite' or 'mysql')", driver)
	}

	limiterBackend := getEnv("LOGIN_LIMITER_BACKEND", "database")
	if limiterBackend != "database" && limiterBackend != "memory" {
		return nil, fmt.Errorf("invalid LOGIN_LIMITER_BACKEND: '%s' (must be 'database' or 'memory')", limiterBackend)
	}

	adminPassword := getEnv("ADMIN_PASSWORD", "")
	if adminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD is required")
	}

	ttlMins := getEnvInt("SESSION_TTL_MINUTES", 120)
	maxMB := getEnvInt("MAX_UPLOAD_MB", 10)
	maxAttempts := getEnvInt("LOGIN_MAX_ATTEMPTS", 5)
	windowMins := getEnvInt("LOGIN_WINDOW_MINUTES", 5)
	cookieSecure := getEnvBool("COOKIE_SECURE", false)

	config := &Config{
		AppMode: appMode,
		Port:    getEnv("PORT", "3000"),
		Database: DatabaseConfig{
			Driver:     driver,
			SQLitePath: getEnv("SQLITE_PATH", "warranty_claims.db"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "3306"),
			User:       getEnv("DB_USER", "root"),
			Password:   getEnv("DB_PASS", ""),
			DBName:     getEnv("DB_NAME", "warranty_claims"),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: adminPassword,
		},
		Session: SessionConfig{
			Secret:     getEnv("SECRET_KEY", "change-me-in-production"),
			TTLMinutes: ttlMins,
		},
		Upload: UploadConfig{
			Dir:      getEnv("UPLOAD_FOLDER", "uploads"),
			MaxBytes: maxMB * 1024 * 1024,
		},
		Login: LoginLimitConfig{
			MaxAttempts:   maxAttempts,
			WindowMinutes: windowMins,
			Backend:       limiterBackend,
		},
		Cookie: CookieConfig{
			Secure:   cookieSecure,
			SameSite: getEnv("COOKIE_SAMESITE", "lax"),
			Domain:   getEnv("COOKIE_DOMAIN", ""),
		},
	}

	// Set global config
	AppConfig = config

	log.Printf("Configuration loaded [MODE: %s, DB: %s, limiter: %s]", appMode, driver, limiterBackend)
	return config, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets a positive integer environment variable, falling back to
// the default on a malformed or non-positive value so a typo cannot zero
// out a session TTL or limiter window.
func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		log.Printf("Warning: invalid %s=%q, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

// getEnvBool gets a boolean environment variable with default value
func getEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %t", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" && c.IsDev() {
		return "*"
	}
	return origins
}
