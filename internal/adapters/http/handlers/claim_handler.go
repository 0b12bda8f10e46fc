package handlers

import (
	"errors"
	"log"
	"net/url"
	"strings"

	"claimdesk/internal/config"
	"claimdesk/internal/core/services"
	"claimdesk/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// claimTokenCookie carries a signed pointer to the just-submitted claim
// for the confirmation page. The claim itself is always refetched from
// the store.
const (
	claimTokenCookie  = "claim_token"
	claimTokenMinutes = 30
)

// ClaimHandler handles public claim submission endpoints
type ClaimHandler struct {
	claimService *services.ClaimService
	cfg          *config.Config
}

// NewClaimHandler creates a new claim handler
func NewClaimHandler(claimService *services.ClaimService, cfg *config.Config) *ClaimHandler {
	return &ClaimHandler{
		claimService: claimService,
		cfg:          cfg,
	}
}

// redirectWithError sends the visitor back to a form page with a message
func redirectWithError(c *fiber.Ctx, path, message string) error {
	return c.Redirect(path+"?error="+url.QueryEscape(message), fiber.StatusFound)
}

// Index renders the submission form
func (h *ClaimHandler) Index(c *fiber.Ctx) error {
	return c.Render("index", fiber.Map{
		"Error": c.Query("error"),
	})
}

// Submit handles the claim submission form
func (h *ClaimHandler) Submit(c *fiber.Ctx) error {
	input := &services.SubmitInput{
		Name:           c.FormValue("name"),
		Email:          c.FormValue("email"),
		Phone:          c.FormValue("phone"),
		Product:        c.FormValue("product"),
		PurchaseDate:   c.FormValue("purchase_date"),
		Issue:          c.FormValue("issue"),
		DefectReason:   c.FormValue("defect_reason"),
		WarrantyOption: c.FormValue("warranty_option"),
	}

	// Optional supporting document
	if fh, err := c.FormFile("document"); err == nil && fh != nil && fh.Filename != "" {
		f, err := fh.Open()
		if err != nil {
			log.Printf("Failed to open uploaded file: %v", err)
			return redirectWithError(c, "/", "Error uploading file. Please try again.")
		}
		defer f.Close()

		input.File = &services.FileUpload{
			Filename: fh.Filename,
			Content:  f,
		}
	}

	claim, err := h.claimService.Submit(c.Context(), input)
	if err != nil {
		var vErr *services.ValidationError
		switch {
		case errors.As(err, &vErr):
			return redirectWithError(c, "/", "Required fields missing: "+strings.Join(vErr.Fields, ", "))
		case errors.Is(err, services.ErrInvalidDate):
			return redirectWithError(c, "/", "Invalid purchase date format. Please use YYYY-MM-DD format.")
		case errors.Is(err, services.ErrInvalidFileType):
			return redirectWithError(c, "/", "Invalid file type. Please upload PDF, JPG, JPEG, PNG, DOC or DOCX files.")
		case errors.Is(err, services.ErrStorage):
			return redirectWithError(c, "/", "Error uploading file. Please try again.")
		default:
			log.Printf("Claim submission failed: %v", err)
			return redirectWithError(c, "/", "Database error occurred. Please try again.")
		}
	}

	token, err := jwt.GenerateClaimToken(claim.ID, h.cfg.Session.Secret, claimTokenMinutes)
	if err != nil {
		log.Printf("Failed to generate claim token: %v", err)
		return redirectWithError(c, "/", "An error occurred. Please try again.")
	}

	c.Cookie(&fiber.Cookie{
		Name:     claimTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   claimTokenMinutes * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	return c.Redirect("/confirmation", fiber.StatusFound)
}

// Confirmation shows the submitted claim's reference number and details,
// refetched from the store by the id carried in the claim token.
func (h *ClaimHandler) Confirmation(c *fiber.Ctx) error {
	token := c.Cookies(claimTokenCookie)
	if token == "" {
		return redirectWithError(c, "/", "No claim submission found.")
	}

	claimID, err := jwt.ValidateClaimToken(token, h.cfg.Session.Secret)
	if err != nil {
		return redirectWithError(c, "/", "No claim submission found.")
	}

	claim, err := h.claimService.GetByID(c.Context(), claimID)
	if err != nil {
		return redirectWithError(c, "/", "Claim not found.")
	}

	return c.Render("confirmation", fiber.Map{
		"ReferenceNumber": claim.ReferenceNumber,
		"Claim":           claim.ToResponse(),
	})
}
