package router

import (
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	d := h.deps
	adminGroup := app.Group("/admin", d.operator())

	// Webhook journal
	adminGroup.Get("/webhooks", d.Admin.HandleWebhooks)
	adminGroup.Post("/webhooks/:id/replay", d.Admin.HandleWebhookReplay)

	// Claims
	adminGroup.Post("/claims/resend", d.Admin.HandleClaimResend)

	// Shared rate limit counters
	adminGroup.Get("/ratelimit", d.Admin.HandleThrottleKeys)
	adminGroup.Post("/ratelimit/reset", d.Admin.HandleThrottleReset)
}
