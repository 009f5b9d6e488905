package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/repository"
	"github.com/crrelabs/HireAnyPro/internal/pkg/billing"
	"github.com/crrelabs/HireAnyPro/internal/pkg/claims"
	"github.com/crrelabs/HireAnyPro/internal/pkg/usercontext"
)

// ============================================================================
// ADMIN CONTROLLER - operator surface for webhook reconciliation and limits
// ============================================================================

// AdminController handles operator requests. Routes sit behind RequireOperator.
type AdminController struct {
	journal         *billing.Service
	processor       *billing.WebhookProcessor
	workflow        *claims.Workflow
	throttle        repository.ThrottleRepository
	throttlePattern string
}

// NewAdminController creates a new admin controller
func NewAdminController(journal *billing.Service, processor *billing.WebhookProcessor, workflow *claims.Workflow, throttle repository.ThrottleRepository, throttlePrefix string) *AdminController {
	return &AdminController{
		journal:         journal,
		processor:       processor,
		workflow:        workflow,
		throttle:        throttle,
		throttlePattern: throttlePrefix + "*",
	}
}

// HandleWebhooks lists journaled webhook events: GET /admin/webhooks?unprocessed=1&page=
func (ac *AdminController) HandleWebhooks(c *fiber.Ctx) error {
	onlyUnprocessed := c.Query("unprocessed") == "1" || c.Query("unprocessed") == "true"
	page, perPage := pagination(c, 50, 100)

	events, err := ac.journal.ListWebhookEvents(c.UserContext(), onlyUnprocessed, page, perPage)
	if err != nil {
		log.Errorf("[Admin] listing webhook events failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "list_failed"})
	}
	return c.JSON(fiber.Map{"events": events, "page": page, "per_page": perPage})
}

// HandleWebhookReplay re-runs reconciliation for a stored event: POST /admin/webhooks/:id/replay
func (ac *AdminController) HandleWebhookReplay(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return badRequest(c, "invalid event id")
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	out, err := ac.processor.Replay(ctx, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		if errors.Is(err, billing.ErrInvalidPayload) {
			return badRequest(c, "stored payload is not a valid event")
		}
		return respondError(c, err)
	}

	log.Infof("[Admin] %s replayed webhook event %d: %s", usercontext.GetOperator(c), id, out.Result.Action)
	body := fiber.Map{"ok": true, "ignored": out.Ignored, "result": out.Result}
	if out.Recovered != nil {
		body["warning"] = out.Recovered.Error()
	}
	return c.JSON(body)
}

// HandleClaimResend re-sends a verification link without rate limit: POST /admin/claims/resend
func (ac *AdminController) HandleClaimResend(c *fiber.Ctx) error {
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
	res, err := ac.workflow.ResendVerification(ctx, req.ListingID, req.Email)
	if err != nil {
		return respondError(c, err)
	}
	return respondClaimResult(c, res)
}

// HandleThrottleKeys lists shared rate limit counters: GET /admin/ratelimit
func (ac *AdminController) HandleThrottleKeys(c *fiber.Ctx) error {
	keys, err := ac.throttle.FindKeys(ac.throttlePattern)
	if err != nil {
		log.Warnf("[Admin] scanning rate limit keys failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "cache_unavailable"})
	}
	return c.JSON(fiber.Map{"keys": keys})
}

// HandleThrottleReset deletes rate limit counters: POST /admin/ratelimit/reset {"keys": [...]}
func (ac *AdminController) HandleThrottleReset(c *fiber.Ctx) error {
	var req struct {
		Keys []string `json:"keys" validate:"required,min=1,max=500"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, validationMessage(err))
	}
	prefix := strings.TrimSuffix(ac.throttlePattern, "*")
	for _, k := range req.Keys {
		if !strings.HasPrefix(k, prefix) {
			return badRequest(c, "only rate limit keys can be reset")
		}
	}

	deleted, err := ac.throttle.DeleteKeys(req.Keys)
	if err != nil {
		log.Warnf("[Admin] resetting rate limit keys failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "cache_unavailable"})
	}
	log.Infof("[Admin] %s reset %d rate limit keys", usercontext.GetOperator(c), deleted)
	return c.JSON(fiber.Map{"deleted": deleted})
}
