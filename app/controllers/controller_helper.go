package controllers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/crrelabs/HireAnyPro/internal/pkg/apperror"
	"github.com/crrelabs/HireAnyPro/internal/pkg/claims"
	"github.com/crrelabs/HireAnyPro/internal/pkg/outcome"
)

// requestTimeout bounds the backing calls of one request.
const requestTimeout = 15 * time.Second

var validate = validator.New()

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}

// validationMessage turns validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "email":
			parts = append(parts, field+" must be a valid email")
		case "oneof":
			parts = append(parts, field+" must be one of "+fe.Param())
		case "min", "max":
			parts = append(parts, field+" must be "+fe.Tag()+" "+fe.Param())
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_input", "message": message})
}

// respondError maps application errors onto a JSON error response. Internal
// causes are logged, never returned.
func respondError(c *fiber.Ctx, err error) error {
	code := apperror.HTTPCodeOf(err)
	msg := "internal error"
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		msg = appErr.Message()
	}
	if code >= fiber.StatusInternalServerError {
		log.Errorf("[HTTP] %s %s failed: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"error": string(apperror.KindOf(err)), "message": msg})
}

// respondClaimResult writes a claim operation result with its mapped status.
func respondClaimResult(c *fiber.Ctx, res claims.Result) error {
	body := fiber.Map{
		"status":  res.Status,
		"message": res.Status.Message(),
		"success": res.Status.Success(),
	}
	if res.ListingID != "" {
		body["listingId"] = res.ListingID
	}
	if res.Email != "" {
		body["email"] = res.Email
	}
	if res.OwnerToken != "" {
		body["ownerToken"] = res.OwnerToken
	}
	return c.Status(res.Status.HTTPStatus()).JSON(body)
}

// pagination reads page and per_page query values, clamped to [1, max].
func pagination(c *fiber.Ctx, defPerPage, maxPerPage int) (page, perPage int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.Query("per_page", strconv.Itoa(defPerPage)))
	if perPage < 1 {
		perPage = defPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// HandleRateLimited answers requests rejected by the global API limiter.
func HandleRateLimited(c *fiber.Ctx) error {
	return c.Status(outcome.RateLimited.HTTPStatus()).JSON(fiber.Map{
		"status": outcome.RateLimited,
		"error":  outcome.RateLimited.Message(),
	})
}
