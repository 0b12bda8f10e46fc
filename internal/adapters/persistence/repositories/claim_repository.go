package repositories

import (
	"context"
	"time"

	"claimdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ClaimRepository handles warranty claim data access
type ClaimRepository struct {
	db *gorm.DB
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Create inserts a new claim. The insert runs in its own transaction so a
// duplicate reference number or any other failure leaves no partial row.
func (r *ClaimRepository) Create(ctx context.Context, claim *models.WarrantyClaim) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(claim).Error
	})
}

// GetByID gets a claim by ID
func (r *ClaimRepository) GetByID(ctx context.Context, id uint) (*models.WarrantyClaim, error) {
	var claim models.WarrantyClaim
	err := r.db.WithContext(ctx).First(&claim, id).Error
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// List lists claims newest-first with pagination
func (r *ClaimRepository) List(ctx context.Context, offset, limit int) ([]*models.WarrantyClaim, int64, error) {
	var claims []*models.WarrantyClaim
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.WarrantyClaim{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&claims).Error

	return claims, total, err
}

// ListAll lists every claim newest-first (export)
func (r *ClaimRepository) ListAll(ctx context.Context) ([]*models.WarrantyClaim, error) {
	var claims []*models.WarrantyClaim
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&claims).Error
	return claims, err
}

// UpdateStatus transitions a pending claim to the given status and stamps
// updated_at, as a single conditional UPDATE. It returns the number of
// rows affected: zero means the claim was not pending (or vanished), so a
// concurrent approve/reject can never silently override a resolved state.
func (r *ClaimRepository) UpdateStatus(ctx context.Context, id uint, status string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.WarrantyClaim{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}
