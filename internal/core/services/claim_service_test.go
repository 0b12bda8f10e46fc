package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"claimdesk/internal/adapters/persistence/models"
	"claimdesk/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps the in-memory database alive and
	// serializes concurrent writers.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func newTestClaimService(t *testing.T) (*ClaimService, string) {
	t.Helper()

	dir := t.TempDir()
	repo := repositories.NewClaimRepository(newTestDB(t))
	return NewClaimService(repo, dir), dir
}

func validInput() *SubmitInput {
	return &SubmitInput{
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		Phone:          "555-0100",
		Product:        "Dishwasher X200",
		PurchaseDate:   "2024-03-21",
		Issue:          "Stopped draining after two weeks",
		DefectReason:   "manufacturing",
		WarrantyOption: "repair",
	}
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	svc, _ := newTestClaimService(t)
	ctx := context.Background()

	claim, err := svc.Submit(ctx, validInput())
	require.NoError(t, err)
	require.NotZero(t, claim.ID)
	require.Equal(t, models.StatusPending, claim.Status)
	require.Regexp(t, regexp.MustCompile(`^WC-\d{8}-[A-Z0-9]{6}$`), claim.ReferenceNumber)
	require.False(t, claim.HasFile())
	require.Nil(t, claim.UpdatedAt)

	// The insert must not stamp updated_at; only a status transition does
	got, err := svc.GetByID(ctx, claim.ID)
	require.NoError(t, err)
	require.Equal(t, claim.ReferenceNumber, got.ReferenceNumber)
	require.Nil(t, got.UpdatedAt)
}

func TestSubmitMissingFields(t *testing.T) {
	t.Parallel()

	svc, _ := newTestClaimService(t)
	ctx := context.Background()

	input := validInput()
	input.Email = ""
	input.Phone = "   "
	input.DefectReason = ""

	_, err := svc.Submit(ctx, input)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"email", "phone", "defect_reason"}, verr.Fields)

	// Nothing persisted
	out, err := svc.List(ctx, &ListInput{})
	require.NoError(t, err)
	require.Zero(t, out.Total)
}

func TestSubmitInvalidDate(t *testing.T) {
	t.Parallel()

	svc, _ := newTestClaimService(t)
	ctx := context.Background()

	for _, date := range []string{"13/31/2024", "2024-13-01", "21-03-2024", "yesterday"} {
		input := validInput()
		input.PurchaseDate = date
		_, err := svc.Submit(ctx, input)
		require.ErrorIs(t, err, ErrInvalidDate, "date %q", date)
	}
}

func TestSubmitRejectedFileType(t *testing.T) {
	t.Parallel()

	svc, dir := newTestClaimService(t)
	ctx := context.Background()

	input := validInput()
	input.File = &FileUpload{Filename: "evil.exe", Content: strings.NewReader("MZ")}

	_, err := svc.Submit(ctx, input)
	require.ErrorIs(t, err, ErrInvalidFileType)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSubmitWithAttachment(t *testing.T) {
	t.Parallel()

	svc, dir := newTestClaimService(t)
	ctx := context.Background()

	content := "%PDF-1.4 receipt"
	input := validInput()
	input.File = &FileUpload{Filename: "proof.pdf", Content: strings.NewReader(content)}

	claim, err := svc.Submit(ctx, input)
	require.NoError(t, err)
	require.True(t, claim.HasFile())

	path, filename, err := svc.Attachment(ctx, claim.ID)
	require.NoError(t, err)
	require.Equal(t, dir, filepath.Dir(path))
	require.True(t, strings.HasSuffix(filename, "_proof.pdf"))

	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, content, string(stored))
}

func TestSubmitConcurrentDistinctReferences(t *testing.T) {
	t.Parallel()

	svc, _ := newTestClaimService(t)
	ctx := context.Background()

	const workers = 8
	refs := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			claim, err := svc.Submit(ctx, validInput())
			if err != nil {
				errs[i] = err
				return
			}
			refs[i] = claim.ReferenceNumber
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.False(t, seen[refs[i]], "duplicate reference %s", refs[i])
		seen[refs[i]] = true
	}
}

func TestGetByIDNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestClaimService(t)

	_, err := svc.GetByID(context.Background(), 9999)
	require.ErrorIs(t, err, ErrClaimNotFound)
}

func TestListPagination(t *testing.T) {
	t.Parallel()

	svc, _ := newTestClaimService(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := svc.Submit(ctx, validInput())
		require.NoError(t, err)
	}

	out, err := svc.List(ctx, &ListInput{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 25, out.Total)
	require.Len(t, out.Claims, 10)
	require.Equal(t, 3, out.TotalPages)

	out, err = svc.List(ctx, &ListInput{Page: 3, Limit: 10})
	require.NoError(t, err)
	require.Len(t, out.Claims, 5)

	// Out-of-range values are clamped to defaults
	out, err = svc.List(ctx, &ListInput{Page: -1, Limit: 0})
	require.NoError(t, err)
	require.Equal(t, 1, out.Page)
	require.Equal(t, 20, out.Limit)

	out, err = svc.List(ctx, &ListInput{Page: 1, Limit: 500})
	require.NoError(t, err)
	require.Equal(t, 100, out.Limit)
}

func TestApprove(t *testing.T) {
	t.Parallel()

	svc, _ := newTestClaimService(t)
	ctx := context.Background()

	claim, err := svc.Submit(ctx, validInput())
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, claim.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, approved.Status)
	require.NotNil(t, approved.UpdatedAt)
	require.True(t, approved.IsResolved())
}

func TestRejectAlreadyResolved(t *testing.T) {
	t.Parallel()

	svc, _ := newTestClaimService(t)
	ctx := context.Background()

	claim, err := svc.Submit(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.Approve(ctx, claim.ID)
	require.NoError(t, err)

	_, err = svc.Reject(ctx, claim.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Approve(ctx, claim.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// The first resolution stands
	got, err := svc.GetByID(ctx, claim.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, got.Status)
}

func TestTransitionMissingClaim(t *testing.T) {
	t.Parallel()

	svc, _ := newTestClaimService(t)

	_, err := svc.Approve(context.Background(), 9999)
	require.ErrorIs(t, err, ErrClaimNotFound)
}

func TestAttachmentErrors(t *testing.T) {
	t.Parallel()

	svc, _ := newTestClaimService(t)
	ctx := context.Background()

	noFile, err := svc.Submit(ctx, validInput())
	require.NoError(t, err)

	_, _, err = svc.Attachment(ctx, noFile.ID)
	require.ErrorIs(t, err, ErrNoAttachment)

	input := validInput()
	input.File = &FileUpload{Filename: "proof.pdf", Content: strings.NewReader("x")}
	withFile, err := svc.Submit(ctx, input)
	require.NoError(t, err)

	path, _, err := svc.Attachment(ctx, withFile.ID)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	_, _, err = svc.Attachment(ctx, withFile.ID)
	require.ErrorIs(t, err, ErrAttachmentMissing)
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	svc, _ := newTestClaimService(t)
	ctx := context.Background()

	input := validInput()
	input.Name = `Smith, "Jane"`
	input.Product = "Washer,\nDryer Combo"
	claim, err := svc.Submit(ctx, input)
	require.NoError(t, err)

	data, err := svc.ExportCSV(ctx)
	require.NoError(t, err)

	records := parseCSV(t, data)
	require.Len(t, records, 2)
	require.Equal(t, []string{"Reference Number", "Name", "Email", "Phone", "Product", "Defect Reason", "Warranty Option", "Created At"}, records[0])

	row := records[1]
	require.Equal(t, claim.ReferenceNumber, row[0])
	require.Equal(t, `Smith, "Jane"`, row[1])
	require.Equal(t, "Washer,\nDryer Combo", row[4])
	require.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, row[7])
}

func TestExportCSVEmpty(t *testing.T) {
	t.Parallel()

	svc, _ := newTestClaimService(t)

	data, err := svc.ExportCSV(context.Background())
	require.NoError(t, err)

	records := parseCSV(t, data)
	require.Len(t, records, 1)
}

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}
