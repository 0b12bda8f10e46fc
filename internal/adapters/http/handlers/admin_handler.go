package handlers

import (
	"errors"
	"strconv"

	"claimdesk/internal/core/services"
	"claimdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles administrative claim operations
type AdminHandler struct {
	claimService *services.ClaimService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(claimService *services.ClaimService) *AdminHandler {
	return &AdminHandler{
		claimService: claimService,
	}
}

// Dashboard renders the claim list, newest first
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	result, err := h.claimService.List(c.Context(), &services.ListInput{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to list claims")
	}

	return c.Render("admin", fiber.Map{
		"AdminUser":  c.Locals("adminUser"),
		"Claims":     result.Claims,
		"Total":      result.Total,
		"Page":       result.Page,
		"TotalPages": result.TotalPages,
	})
}

// View returns one claim's full detail as structured data
func (h *AdminHandler) View(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid claim ID")
	}

	claim, err := h.claimService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrClaimNotFound) {
			return response.NotFound(c, "Claim not found")
		}
		return response.InternalServerError(c, "Failed to fetch claim details")
	}

	return response.Success(c, "Claim retrieved successfully", fiber.Map{
		"claim": claim.ToResponse(),
	})
}

// Approve transitions a pending claim to approved
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid claim ID")
	}

	claim, err := h.claimService.Approve(c.Context(), uint(id))
	if err != nil {
		return h.transitionError(c, err, "Failed to approve claim")
	}

	return response.Success(c, "Claim approved successfully", fiber.Map{
		"claim": claim.ToResponse(),
	})
}

// Reject transitions a pending claim to rejected
func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid claim ID")
	}

	claim, err := h.claimService.Reject(c.Context(), uint(id))
	if err != nil {
		return h.transitionError(c, err, "Failed to reject claim")
	}

	return response.Success(c, "Claim rejected successfully", fiber.Map{
		"claim": claim.ToResponse(),
	})
}

// transitionError maps status-transition failures onto response codes
func (h *AdminHandler) transitionError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrClaimNotFound):
		return response.NotFound(c, "Claim not found")
	case errors.Is(err, services.ErrInvalidTransition):
		return response.Conflict(c, "Claim has already been resolved")
	default:
		return response.InternalServerError(c, fallback)
	}
}

// Download streams a claim's attachment
func (h *AdminHandler) Download(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid claim ID")
	}

	path, filename, err := h.claimService.Attachment(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrClaimNotFound):
			return response.NotFound(c, "Claim not found")
		case errors.Is(err, services.ErrNoAttachment):
			return response.NotFound(c, "No file attached to this claim")
		case errors.Is(err, services.ErrAttachmentMissing):
			return response.NotFound(c, "Attached file missing from storage")
		default:
			return response.InternalServerError(c, "Failed to download attachment")
		}
	}

	return c.Download(path, filename)
}

// Export streams all claims as CSV
func (h *AdminHandler) Export(c *fiber.Ctx) error {
	data, err := h.claimService.ExportCSV(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to export claims")
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="warranty_claims.csv"`)
	return c.Send(data)
}
