package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crrelabs/HireAnyPro/app/controllers"
	"github.com/crrelabs/HireAnyPro/internal/pkg/ratelimit"
)

// Dependencies carries the wired controllers and shared middleware state.
type Dependencies struct {
	Claims    *controllers.ClaimController
	Billing   *controllers.BillingController
	Directory *controllers.DirectoryController
	Blog      *controllers.BlogController
	Admin     *controllers.AdminController

	// Limits backs the per-route write limits.
	Limits ratelimit.Store
	// LimiterStorage backs the /api group limiter. nil keeps it in memory.
	LimiterStorage fiber.Storage
	// APIRequestsPerMinute caps all /api traffic per client.
	APIRequestsPerMinute int

	OwnerTokenSecret string
	// Operator guards /admin. nil rejects every admin request.
	Operator fiber.Handler
}

func (d *Dependencies) operator() fiber.Handler {
	if d.Operator != nil {
		return d.Operator
	}
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "admin_not_configured"})
	}
}
