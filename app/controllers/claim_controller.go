package controllers

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/repository"
	"github.com/crrelabs/HireAnyPro/internal/pkg/claims"
	"github.com/crrelabs/HireAnyPro/internal/pkg/outcome"
	"github.com/crrelabs/HireAnyPro/internal/pkg/ratelimit"
	"github.com/crrelabs/HireAnyPro/views"
)

// ClaimController serves the claim and verification flows as JSON and HTML.
type ClaimController struct {
	workflow       *claims.Workflow
	gate           *claims.Gate
	listings       repository.ListingRepository
	captchaSiteKey string
}

func NewClaimController(workflow *claims.Workflow, gate *claims.Gate, listings repository.ListingRepository, captchaSiteKey string) *ClaimController {
	return &ClaimController{workflow: workflow, gate: gate, listings: listings, captchaSiteKey: captchaSiteKey}
}

type claimRequest struct {
	ListingID      string `json:"listingId" form:"listingId" validate:"required,max=64"`
	Email          string `json:"email" form:"email" validate:"required,email,max=255"`
	Website        string `json:"website" form:"website"`
	TurnstileToken string `json:"turnstileToken" form:"cf-turnstile-response"`
}

type resendRequest struct {
	ListingID string `json:"listingId" form:"listingId" validate:"required,max=64"`
	Email     string `json:"email" form:"email" validate:"required,email,max=255"`
}

type verifyRequest struct {
	Token     string `json:"token" query:"token" validate:"required,max=128"`
	ListingID string `json:"listingId" query:"listing" validate:"required,max=64"`
}

func (r *claimRequest) normalize() {
	r.ListingID = strings.TrimSpace(r.ListingID)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// HandleClaim starts a claim: POST /api/claim
func (cc *ClaimController) HandleClaim(c *fiber.Ctx) error {
	var req claimRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	req.normalize()
	if err := validate.Struct(req); err != nil {
		return badRequest(c, validationMessage(err))
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := cc.workflow.SubmitClaim(ctx, claims.SubmitRequest{
		ListingID:    req.ListingID,
		Email:        req.Email,
		Honeypot:     req.Website,
		CaptchaToken: req.TurnstileToken,
		RemoteIP:     ratelimit.ClientIP(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondClaimResult(c, res)
}

// HandleResend re-sends the verification link: POST /api/claim/resend
func (cc *ClaimController) HandleResend(c *fiber.Ctx) error {
	var req resendRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	req.ListingID = strings.TrimSpace(req.ListingID)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return badRequest(c, validationMessage(err))
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := cc.workflow.ResendVerification(ctx, req.ListingID, req.Email)
	if err != nil {
		return respondError(c, err)
	}
	return respondClaimResult(c, res)
}

// HandleVerifyClaim verifies a token: GET or POST /api/verify-claim
func (cc *ClaimController) HandleVerifyClaim(c *fiber.Ctx) error {
	var req verifyRequest
	if c.Method() == fiber.MethodPost {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	} else if err := c.QueryParser(&req); err != nil {
		return badRequest(c, "invalid query")
	}
	if err := validate.Struct(req); err != nil {
		return respondClaimResult(c, claims.Result{Status: outcome.Invalid})
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := cc.gate.VerifyClaim(ctx, req.Token, req.ListingID)
	if err != nil {
		return respondError(c, err)
	}
	return respondClaimResult(c, res)
}

// HandleClaimPage renders the claim form: GET /claim/:listingId
func (cc *ClaimController) HandleClaimPage(c *fiber.Ctx) error {
	listing, err := cc.listings.GetByID(c.Params("listingId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return renderNotFound(c, outcome.NotFound.Message())
		}
		return respondError(c, err)
	}
	return c.Render("claim", fiber.Map{
		"Title":          "Claim " + listing.Name,
		"Listing":        listing,
		"CSRF":           csrfToken(c),
		"Flash":          flash.Get(c),
		"CaptchaSiteKey": cc.captchaSiteKey,
	}, views.Layout)
}

// HandleClaimPageSubmit handles the claim form: POST /claim/:listingId
func (cc *ClaimController) HandleClaimPageSubmit(c *fiber.Ctx) error {
	listingID := c.Params("listingId")
	back := "/claim/" + listingID

	req := claimRequest{
		ListingID:      listingID,
		Email:          c.FormValue("email"),
		Website:        c.FormValue("website"),
		TurnstileToken: c.FormValue("cf-turnstile-response"),
	}
	req.normalize()
	if err := validate.Struct(req); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Please enter a valid business email."}).Redirect(back, fiber.StatusSeeOther)
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := cc.workflow.SubmitClaim(ctx, claims.SubmitRequest{
		ListingID:    req.ListingID,
		Email:        req.Email,
		Honeypot:     req.Website,
		CaptchaToken: req.TurnstileToken,
		RemoteIP:     ratelimit.ClientIP(c),
	})
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Something went wrong. Please try again."}).Redirect(back, fiber.StatusSeeOther)
	}
	if res.Status != outcome.Pending && !res.Status.Success() {
		return flash.WithError(c, fiber.Map{"type": "error", "message": res.Status.Message()}).Redirect(back, fiber.StatusSeeOther)
	}
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": res.Status.Message()}).Redirect(back+"/pending", fiber.StatusSeeOther)
}

// HandleClaimPending renders the check-your-inbox page: GET /claim/:listingId/pending
func (cc *ClaimController) HandleClaimPending(c *fiber.Ctx) error {
	return c.Render("claim_pending", fiber.Map{
		"Title":     "Check your inbox",
		"ListingID": c.Params("listingId"),
		"Message":   outcome.Pending.Message(),
		"CSRF":      csrfToken(c),
		"Flash":     flash.Get(c),
	}, views.Layout)
}

// HandleClaimPageResend handles the resend form: POST /claim/:listingId/resend
func (cc *ClaimController) HandleClaimPageResend(c *fiber.Ctx) error {
	listingID := c.Params("listingId")
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	pending := "/claim/" + listingID + "/pending"

	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := cc.workflow.ResendVerification(ctx, listingID, email)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Please enter the email you claimed with."}).Redirect(pending, fiber.StatusSeeOther)
	}
	if res.Status == outcome.Expired || res.Status == outcome.NotFound {
		return flash.WithError(c, fiber.Map{"type": "error", "message": res.Status.Message()}).Redirect("/claim/"+listingID, fiber.StatusSeeOther)
	}
	if !res.Status.Success() {
		return flash.WithError(c, fiber.Map{"type": "error", "message": res.Status.Message()}).Redirect(pending, fiber.StatusSeeOther)
	}
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "We sent a new link."}).Redirect(pending, fiber.StatusSeeOther)
}

// HandleVerifyClaimPage is the landing page of the emailed link: GET /verify-claim
func (cc *ClaimController) HandleVerifyClaimPage(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Query("token"))
	listingID := strings.TrimSpace(c.Query("listing"))

	res := claims.Result{Status: outcome.Invalid, ListingID: listingID}
	if token != "" && listingID != "" {
		ctx, cancel := requestContext(c)
		defer cancel()
		var err error
		res, err = cc.gate.VerifyClaim(ctx, token, listingID)
		if err != nil {
			return respondError(c, err)
		}
	}

	return c.Status(res.Status.HTTPStatus()).Render("verify_claim", fiber.Map{
		"Title":      "Verify claim",
		"Status":     string(res.Status),
		"Success":    res.Status.Success(),
		"Message":    res.Status.Message(),
		"OwnerToken": res.OwnerToken,
		"ListingID":  url.PathEscape(listingID),
	}, views.Layout)
}

func renderNotFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).Render("not_found", fiber.Map{
		"Title":   "Not found",
		"Message": message,
	}, views.Layout)
}

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals("csrf").(string)
	return token
}
