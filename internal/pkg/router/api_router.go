package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/crrelabs/HireAnyPro/app/controllers"
	"github.com/crrelabs/HireAnyPro/internal/pkg/middleware"
	"github.com/crrelabs/HireAnyPro/internal/pkg/ratelimit"
)

const (
	defaultAPIRequestsPerMinute = 120
	claimLimit                  = 5
	writeLimit                  = 10
	limitWindow                 = time.Minute
)

type ApiRouter struct {
	deps *Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	d := h.deps
	perMinute := d.APIRequestsPerMinute
	if perMinute <= 0 {
		perMinute = defaultAPIRequestsPerMinute
	}
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:          perMinute,
		Expiration:   time.Minute,
		KeyGenerator: ratelimit.ClientIP,
		LimitReached: controllers.HandleRateLimited,
		Storage:      d.LimiterStorage,
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "HireAnyPro directory API",
		})
	})

	limit := func(name string, n int) fiber.Handler {
		return ratelimit.Middleware(d.Limits, n, limitWindow, ratelimit.ByClientIP(name))
	}

	// Claims
	api.Post("/claim", limit("claim", claimLimit), d.Claims.HandleClaim)
	api.Post("/claim/resend", limit("claim-resend", claimLimit), d.Claims.HandleResend)
	api.Get("/verify-claim", d.Claims.HandleVerifyClaim)
	api.Post("/verify-claim", d.Claims.HandleVerifyClaim)

	// Billing
	api.Post("/checkout", limit("checkout", claimLimit), d.Billing.HandleCheckout)

	// Directory
	api.Get("/listings", d.Directory.HandleListings)
	api.Get("/listings/:slug", d.Directory.HandleListing)
	api.Get("/listings/:slug/reviews", d.Directory.HandleListingReviews)
	api.Get("/categories", d.Directory.HandleCategories)
	api.Post("/review", limit("review", writeLimit), d.Directory.HandleReview)
	api.Post("/listing/update", limit("listing-update", writeLimit),
		middleware.RequireOwnerToken(d.OwnerTokenSecret), d.Directory.HandleListingUpdate)

	// Blog
	api.Get("/blog", d.Blog.HandleBlogList)
	api.Get("/blog/categories", d.Blog.HandleBlogCategories)
	api.Get("/blog/:slug", d.Blog.HandleBlogPost)
}

func NewApiRouter(deps *Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}
