package models

import (
	"time"

	"gorm.io/gorm"
)

// Claim statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// WarrantyClaim represents the warranty_claims table. Claims are never
// deleted by the application; the only mutation after insert is the status
// transition, which also sets UpdatedAt. Auto update tracking is disabled
// so UpdatedAt stays nil until a claim is resolved.
type WarrantyClaim struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ReferenceNumber string     `gorm:"uniqueIndex;size:64;not null" json:"reference_number"`
	Name            string     `gorm:"size:100;not null" json:"name"`
	Email           string     `gorm:"size:100;not null" json:"email"`
	Phone           string     `gorm:"size:20;not null" json:"phone"`
	Product         string     `gorm:"size:200;not null" json:"product"`
	PurchaseDate    string     `gorm:"size:10;not null" json:"purchase_date"`
	Issue           string     `gorm:"type:text;not null" json:"issue"`
	DefectReason    string     `gorm:"size:50;not null" json:"defect_reason"`
	WarrantyOption  string     `gorm:"size:50;not null" json:"warranty_option"`
	FilePath        string     `gorm:"size:255" json:"-"`
	Status          string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (WarrantyClaim) TableName() string {
	return "warranty_claims"
}

// HasFile reports whether the claim references a stored attachment
func (c *WarrantyClaim) HasFile() bool {
	return c.FilePath != ""
}

// IsResolved reports whether the claim left the pending state
func (c *WarrantyClaim) IsResolved() bool {
	return c.Status != StatusPending
}

// WarrantyClaimResponse DTO; exposes a has_file flag instead of the
// stored path.
type WarrantyClaimResponse struct {
	ID              uint       `json:"id"`
	ReferenceNumber string     `json:"reference_number"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Product         string     `json:"product"`
	PurchaseDate    string     `json:"purchase_date"`
	Issue           string     `json:"issue"`
	DefectReason    string     `json:"defect_reason"`
	WarrantyOption  string     `json:"warranty_option"`
	Status          string     `json:"status"`
	HasFile         bool       `json:"has_file"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

func (c *WarrantyClaim) ToResponse() *WarrantyClaimResponse {
	return &WarrantyClaimResponse{
		ID:              c.ID,
		ReferenceNumber: c.ReferenceNumber,
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		Product:         c.Product,
		PurchaseDate:    c.PurchaseDate,
		Issue:           c.Issue,
		DefectReason:    c.DefectReason,
		WarrantyOption:  c.WarrantyOption,
		Status:          c.Status,
		HasFile:         c.HasFile(),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// LoginAttempt represents the login_attempts table backing the shared
// admin login limiter. Rows older than the rolling window are swept by
// the cron service.
type LoginAttempt struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClientKey string    `gorm:"size:64;not null;index" json:"client_key"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (LoginAttempt) TableName() string {
	return "login_attempts"
}

// AutoMigrate creates the tables if they do not exist
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&WarrantyClaim{},
		&LoginAttempt{},
	)
}
