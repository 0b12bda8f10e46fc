package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"claimdesk/internal/config"
	"claimdesk/internal/pkg/jwt"
	"claimdesk/internal/pkg/password"
)

// Auth errors. User-facing messages stay generic; the detailed reason is
// only logged server-side.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many login attempts")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// AttemptStore is the keyed login-attempt counter consulted by the rate
// limiter. Take atomically checks the window and records the attempt, so
// concurrent logins from one client cannot overshoot the limit. The
// database-backed implementation shares counts across worker processes;
// the in-memory one is for single-worker deployments and tests.
type AttemptStore interface {
	Take(ctx context.Context, clientKey string, since time.Time, limit int64) (bool, error)
	Clear(ctx context.Context, clientKey string) error
	Sweep(ctx context.Context, before time.Time) error
}

// AuthService gates all administrative operations
type AuthService struct {
	attempts  AttemptStore
	cfg       *config.Config
	adminHash string
}

// NewAuthService creates a new auth service. The configured admin password
// is hashed once here so login verification always runs bcrypt against a
// real hash.
func NewAuthService(attempts AttemptStore, cfg *config.Config) (*AuthService, error) {
	hash, err := password.Hash(cfg.Admin.Password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	return &AuthService{
		attempts:  attempts,
		cfg:       cfg,
		adminHash: hash,
	}, nil
}

// Window returns the rolling rate-limit window
func (s *AuthService) Window() time.Duration {
	return time.Duration(s.cfg.Login.WindowMinutes) * time.Minute
}

// Login authenticates the admin credential pair. Every attempt from a
// client counts against its rolling window; once the window is full,
// further attempts fail regardless of credential correctness. A successful
// login clears the client's counter.
func (s *AuthService) Login(ctx context.Context, username, pass, clientIP, userAgent string) (string, error) {
	since := time.Now().Add(-s.Window())

	allowed, err := s.attempts.Take(ctx, clientIP, since, int64(s.cfg.Login.MaxAttempts))
	if err != nil {
		return "", fmt.Errorf("record login attempt: %w", err)
	}
	if !allowed {
		log.Printf("Login rate limited for %s", clientIP)
		return "", ErrRateLimited
	}

	// Evaluate both checks before deciding so a wrong username costs the
	// same as a wrong password.
	usernameOK := password.ConstantTimeEquals(username, s.cfg.Admin.Username)
	passwordOK := password.Verify(pass, s.adminHash)
	if !usernameOK || !passwordOK {
		log.Printf("Failed admin login from %s", clientIP)
		return "", ErrInvalidCredentials
	}

	if err := s.attempts.Clear(ctx, clientIP); err != nil {
		log.Printf("Failed to clear login attempts for %s: %v", clientIP, err)
	}

	fingerprint := jwt.Fingerprint(clientIP, userAgent)
	token, err := jwt.GenerateSessionToken(username, fingerprint, s.cfg.Session.Secret, s.cfg.Session.TTLMinutes)
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	log.Printf("Admin logged in from %s", clientIP)
	return token, nil
}

// Validate checks a session token and its binding to the presenting
// client. It is consulted before every administrative operation.
func (s *AuthService) Validate(token, clientIP, userAgent string) (*jwt.SessionClaims, error) {
	claims, err := jwt.ValidateSessionToken(token, s.cfg.Session.Secret)
	if err != nil {
		return nil, ErrInvalidSession
	}

	if claims.Fingerprint != jwt.Fingerprint(clientIP, userAgent) {
		log.Printf("Session fingerprint mismatch from %s", clientIP)
		return nil, ErrInvalidSession
	}

	return claims, nil
}

// SessionTTLSeconds returns the session lifetime for cookie expiry
func (s *AuthService) SessionTTLSeconds() int {
	return s.cfg.Session.TTLMinutes * 60
}
