package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"claimdesk/internal/adapters/persistence/models"
	"claimdesk/internal/adapters/persistence/repositories"
	"claimdesk/internal/pkg/refnum"
	"claimdesk/internal/pkg/upload"

	"gorm.io/gorm"
)

// Claim service errors
var (
	ErrInvalidDate       = errors.New("invalid purchase date format")
	ErrInvalidFileType   = errors.New("invalid file type")
	ErrStorage           = errors.New("failed to store uploaded file")
	ErrClaimNotFound     = errors.New("claim not found")
	ErrInvalidTransition = errors.New("claim is not pending")
	ErrNoAttachment      = errors.New("no file attached to claim")
	ErrAttachmentMissing = errors.New("attached file missing from storage")
)

// ValidationError reports every missing required field by name
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "required fields missing: " + strings.Join(e.Fields, ", ")
}

// ClaimService handles the warranty claim lifecycle
type ClaimService struct {
	claimRepo *repositories.ClaimRepository
	uploadDir string
}

// NewClaimService creates a new claim service
func NewClaimService(claimRepo *repositories.ClaimRepository, uploadDir string) *ClaimService {
	return &ClaimService{
		claimRepo: claimRepo,
		uploadDir: uploadDir,
	}
}

// FileUpload is an optional supporting document attached to a submission
type FileUpload struct {
	Filename string
	Content  io.Reader
}

// SubmitInput represents the claim submission form
type SubmitInput struct {
	Name           string
	Email          string
	Phone          string
	Product        string
	PurchaseDate   string
	Issue          string
	DefectReason   string
	WarrantyOption string
	File           *FileUpload
}

// missingFields returns the names of required fields left empty, in form order
func (in *SubmitInput) missingFields() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", in.Name},
		{"email", in.Email},
		{"phone", in.Phone},
		{"product", in.Product},
		{"purchase_date", in.PurchaseDate},
		{"issue", in.Issue},
		{"defect_reason", in.DefectReason},
		{"warranty_option", in.WarrantyOption},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Submit validates a submission, stores the optional attachment and creates
// the claim with a fresh reference number and status pending.
func (s *ClaimService) Submit(ctx context.Context, input *SubmitInput) (*models.WarrantyClaim, error) {
	if missing := input.missingFields(); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	if _, err := time.Parse("2006-01-02", input.PurchaseDate); err != nil {
		return nil, ErrInvalidDate
	}

	var filePath string
	if input.File != nil && input.File.Filename != "" {
		if !upload.Allowed(input.File.Filename) {
			return nil, ErrInvalidFileType
		}

		path, err := upload.Save(s.uploadDir, input.File.Filename, input.File.Content)
		if err != nil {
			log.Printf("File upload error: %v", err)
			return nil, ErrStorage
		}
		filePath = path
	}

	claim := &models.WarrantyClaim{
		ReferenceNumber: refnum.Generate(),
		Name:            input.Name,
		Email:           input.Email,
		Phone:           input.Phone,
		Product:         input.Product,
		PurchaseDate:    input.PurchaseDate,
		Issue:           input.Issue,
		DefectReason:    input.DefectReason,
		WarrantyOption:  input.WarrantyOption,
		FilePath:        filePath,
		Status:          models.StatusPending,
	}

	if err := s.claimRepo.Create(ctx, claim); err != nil {
		// The row never persisted; the stored file is an accepted
		// residual, but it must not go unnoticed.
		if filePath != "" {
			log.Printf("Claim insert failed, orphaned upload left at %s", filePath)
		}
		return nil, fmt.Errorf("create claim: %w", err)
	}

	return claim, nil
}

// GetByID gets a claim by ID
func (s *ClaimService) GetByID(ctx context.Context, id uint) (*models.WarrantyClaim, error) {
	claim, err := s.claimRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return claim, nil
}

// ListInput represents list input
type ListInput struct {
	Page  int
	Limit int
}

// ListOutput represents list output
type ListOutput struct {
	Claims     []*models.WarrantyClaim `json:"claims"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"total_pages"`
}

// List lists claims newest-first
func (s *ClaimService) List(ctx context.Context, input *ListInput) (*ListOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	offset := (input.Page - 1) * input.Limit
	claims, total, err := s.claimRepo.List(ctx, offset, input.Limit)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListOutput{
		Claims:     claims,
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages,
	}, nil
}

// Approve transitions a pending claim to approved
func (s *ClaimService) Approve(ctx context.Context, id uint) (*models.WarrantyClaim, error) {
	return s.transition(ctx, id, models.StatusApproved)
}

// Reject transitions a pending claim to rejected
func (s *ClaimService) Reject(ctx context.Context, id uint) (*models.WarrantyClaim, error) {
	return s.transition(ctx, id, models.StatusRejected)
}

// transition applies a pending-only status change. The precondition check
// and the write are a single conditional UPDATE, so two concurrent
// resolutions of the same claim cannot both win.
func (s *ClaimService) transition(ctx context.Context, id uint, status string) (*models.WarrantyClaim, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.claimRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update claim status: %w", err)
	}
	if rows == 0 {
		// Claim exists but is already resolved
		return nil, ErrInvalidTransition
	}

	return s.GetByID(ctx, id)
}

// Attachment resolves the stored file for a claim. It distinguishes a
// claim without an attachment from a record whose file disappeared from
// storage.
func (s *ClaimService) Attachment(ctx context.Context, id uint) (path, filename string, err error) {
	claim, err := s.GetByID(ctx, id)
	if err != nil {
		return "", "", err
	}

	if !claim.HasFile() {
		return "", "", ErrNoAttachment
	}

	if _, err := os.Stat(claim.FilePath); err != nil {
		log.Printf("Attachment for claim %d not found at %s: %v", id, claim.FilePath, err)
		return "", "", ErrAttachmentMissing
	}

	return claim.FilePath, filepath.Base(claim.FilePath), nil
}

// ExportCSV serializes every claim as CSV with a header line. Field values
// are quoted by the writer, so embedded commas and newlines in free-text
// fields cannot break column alignment.
func (s *ClaimService) ExportCSV(ctx context.Context) ([]byte, error) {
	claims, err := s.claimRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Reference Number", "Name", "Email", "Phone", "Product", "Defect Reason", "Warranty Option", "Created At"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, claim := range claims {
		record := []string{
			claim.ReferenceNumber,
			claim.Name,
			claim.Email,
			claim.Phone,
			claim.Product,
			claim.DefectReason,
			claim.WarrantyOption,
			claim.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
