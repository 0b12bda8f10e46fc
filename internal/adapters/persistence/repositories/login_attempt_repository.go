package repositories

import (
	"context"
	"time"

	"claimdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// LoginAttemptRepository is the database-backed attempt store for the
// admin login limiter. Because the rows live in the shared database,
// counts stay correct across multiple worker processes.
type LoginAttemptRepository struct {
	db *gorm.DB
}

// NewLoginAttemptRepository creates a new login attempt repository
func NewLoginAttemptRepository(db *gorm.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// Count returns the number of attempts for the key since the given instant
func (r *LoginAttemptRepository) Count(ctx context.Context, clientKey string, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.LoginAttempt{}).
		Where("client_key = ? AND created_at > ?", clientKey, since).
		Count(&n).Error
	return n, err
}

// Take counts the key's attempts since the given instant and, while the
// count is under the limit, records a new one. Both statements run in one
// transaction so concurrent attempts cannot overshoot the limit.
func (r *LoginAttemptRepository) Take(ctx context.Context, clientKey string, since time.Time, limit int64) (bool, error) {
	allowed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.LoginAttempt{}).
			Where("client_key = ? AND created_at > ?", clientKey, since).
			Count(&n).Error; err != nil {
			return err
		}
		if n >= limit {
			return nil
		}

		allowed = true
		return tx.Create(&models.LoginAttempt{ClientKey: clientKey}).Error
	})
	return allowed, err
}

// Record registers one attempt for the key
func (r *LoginAttemptRepository) Record(ctx context.Context, clientKey string) error {
	return r.db.WithContext(ctx).Create(&models.LoginAttempt{ClientKey: clientKey}).Error
}

// Clear removes all attempts for the key
func (r *LoginAttemptRepository) Clear(ctx context.Context, clientKey string) error {
	return r.db.WithContext(ctx).
		Where("client_key = ?", clientKey).
		Delete(&models.LoginAttempt{}).Error
}

// Sweep deletes attempts older than the given instant
func (r *LoginAttemptRepository) Sweep(ctx context.Context, before time.Time) error {
	return r.db.WithContext(ctx).
		Where("created_at <= ?", before).
		Delete(&models.LoginAttempt{}).Error
}
