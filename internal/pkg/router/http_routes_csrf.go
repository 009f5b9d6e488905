package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/crrelabs/HireAnyPro/internal/pkg/env"
	"github.com/crrelabs/HireAnyPro/internal/pkg/ratelimit"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	d := h.deps
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}
	limit := func(name string) fiber.Handler {
		return ratelimit.Middleware(d.Limits, claimLimit, limitWindow, ratelimit.ByClientIP(name))
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get("/claim/:listingId", d.Claims.HandleClaimPage)
	group.Post("/claim/:listingId", limit("claim"), d.Claims.HandleClaimPageSubmit)
	group.Get("/claim/:listingId/pending", d.Claims.HandleClaimPending)
	group.Post("/claim/:listingId/resend", limit("claim-resend"), d.Claims.HandleClaimPageResend)
	group.Get("/verify-claim", d.Claims.HandleVerifyClaimPage)
}
