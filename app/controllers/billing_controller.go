package controllers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/crrelabs/HireAnyPro/internal/pkg/billing"
)

// CheckoutCreator creates hosted checkout sessions.
type CheckoutCreator interface {
	CreateSession(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutSession, error)
}

// BillingController serves checkout creation and the Stripe webhook.
type BillingController struct {
	checkout      CheckoutCreator
	processor     *billing.WebhookProcessor
	webhookSecret string
	// allowUnsigned accepts unsigned deliveries when no secret is configured (dev only).
	allowUnsigned bool
}

func NewBillingController(checkout CheckoutCreator, processor *billing.WebhookProcessor, webhookSecret string, allowUnsigned bool) *BillingController {
	return &BillingController{
		checkout:      checkout,
		processor:     processor,
		webhookSecret: webhookSecret,
		allowUnsigned: allowUnsigned,
	}
}

type checkoutRequest struct {
	Plan      string `json:"plan" validate:"required,oneof=pro featured"`
	ListingID string `json:"listingId" validate:"max=64"`
	Email     string `json:"email" validate:"required,email,max=255"`
}

// HandleCheckout creates a Stripe Checkout Session: POST /api/checkout
func (bc *BillingController) HandleCheckout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	req.Plan = strings.ToLower(strings.TrimSpace(req.Plan))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.ListingID = strings.TrimSpace(req.ListingID)
	if err := validate.Struct(req); err != nil {
		return badRequest(c, validationMessage(err))
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	session, err := bc.checkout.CreateSession(ctx, billing.CheckoutRequest{
		Plan:      req.Plan,
		ListingID: req.ListingID,
		Email:     req.Email,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"id": session.ID, "url": session.URL})
}

// HandleStripeWebhook verifies, journals and reconciles a Stripe delivery:
// POST /webhooks/stripe. Anything but a 2xx makes Stripe retry, so only
// failures a retry can fix return 5xx.
func (bc *BillingController) HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	signatureValid := false
	if bc.webhookSecret != "" {
		_, err := billing.ConstructStripeEvent(rawBody, c.Get("Stripe-Signature"), bc.webhookSecret, billing.DefaultSignatureTolerance)
		if errors.Is(err, billing.ErrInvalidPayload) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
		}
		if err != nil {
			log.Warnf("[Billing] rejected webhook from %s: %v", c.IP(), err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
		}
		signatureValid = true
	} else if !bc.allowUnsigned {
		log.Error("[Billing] STRIPE_WEBHOOK_SECRET is not set, refusing webhook")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "webhook_not_configured"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	out, err := bc.processor.Process(ctx, rawBody, signatureValid)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidPayload) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
		}
		log.Errorf("[Billing] webhook processing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_processing_failed"})
	}

	switch {
	case out.Duplicate:
		return c.JSON(fiber.Map{"ok": true, "duplicate": true})
	case out.Ignored:
		return c.JSON(fiber.Map{"ok": true, "ignored": true})
	case out.Recovered != nil:
		return c.JSON(fiber.Map{"ok": true, "warning": out.Recovered.Error()})
	default:
		return c.JSON(fiber.Map{"ok": true, "action": out.Result.Action})
	}
}
