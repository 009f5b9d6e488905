package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/crrelabs/HireAnyPro/app/controllers"
	"github.com/crrelabs/HireAnyPro/app/repository"
	"github.com/crrelabs/HireAnyPro/internal/pkg/billing"
	"github.com/crrelabs/HireAnyPro/internal/pkg/botcheck"
	"github.com/crrelabs/HireAnyPro/internal/pkg/cache"
	"github.com/crrelabs/HireAnyPro/internal/pkg/claims"
	"github.com/crrelabs/HireAnyPro/internal/pkg/database"
	"github.com/crrelabs/HireAnyPro/internal/pkg/env"
	"github.com/crrelabs/HireAnyPro/internal/pkg/identity"
	"github.com/crrelabs/HireAnyPro/internal/pkg/mail"
	"github.com/crrelabs/HireAnyPro/internal/pkg/middleware"
	"github.com/crrelabs/HireAnyPro/internal/pkg/ratelimit"
	"github.com/crrelabs/HireAnyPro/internal/pkg/router"
	"github.com/crrelabs/HireAnyPro/views"
)

const (
	rateLimitPrefix  = "ratelimit:"
	limiterStorageDB = 1
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	// init fiber app
	app := fiber.New(fiber.Config{
		Views:       views.NewEngine(),
		BodyLimit:   1 << 20,
		ProxyHeader: env.GetEnv("PROXY_HEADER", ""),
	})

	// ignore and cache favicon
	if _, err := os.Stat("public/favicon.ico"); err == nil {
		app.Use(favicon.New(favicon.Config{
			File:         "public/favicon.ico",
			URL:          "/favicon.ico",
			CacheControl: "public, max-age=604800",
		}))
	}

	// recovery and logging
	app.Use(recover.New(), logger.New())

	operator := middleware.RequireOperatorFromEnv()

	// fiber metrics
	app.Get("/metrics", operator, monitor.New())

	// SWAGGER / OPENAPI
	if _, err := os.Stat("public/docs/v1/openapi.yml"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: "public/docs/v1/openapi.yml",
			Path:     "v1",
		}))
	} else {
		log.Printf("OpenAPI document not found, /docs/api/v1 disabled: %v", err)
	}

	// ROUTER
	router.InstallRouter(app, newDependencies(operator))

	return app
}

// newDependencies wires the directory services onto the global DB and cache.
func newDependencies(operator fiber.Handler) *router.Dependencies {
	db := database.GetDB()
	caps := database.GetCapabilities()

	repository.InitializeFactory(db)
	repos := repository.GetGlobalRepositories()

	ownerSecret := env.GetEnv("OWNER_TOKEN_SECRET", "")
	if ownerSecret == "" {
		log.Println("Warning: OWNER_TOKEN_SECRET is not set, owner tokens are disabled")
	}

	notifier := mail.NewNotifierFromEnv()
	profiles := identity.NewResolver(db)
	detector := botcheck.NewDetector(botcheck.NewVerifierFromEnv())

	claimCfg := claims.Config{
		HasVerificationColumns: caps.HasVerificationColumns,
		OwnerTokenSecret:       ownerSecret,
		TokenTTL:               env.GetEnvDuration("CLAIM_TOKEN_TTL", 0),
	}
	workflow := claims.NewWorkflow(db, profiles, detector, notifier, claimCfg)
	gate := claims.NewGate(db, profiles, notifier, claimCfg)

	journal := billing.NewServiceFromDB(db)
	processor := billing.NewWebhookProcessor(journal, billing.NewReconciler(db, profiles, journal, notifier))
	webhookSecret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")
	allowUnsigned := env.IsDev() && webhookSecret == ""

	deps := &router.Dependencies{
		Claims:               controllers.NewClaimController(workflow, gate, repos.Listing, env.GetEnv("CAPTCHA_SITE_KEY", "")),
		Billing:              controllers.NewBillingController(billing.NewCheckoutClientFromEnv(), processor, webhookSecret, allowUnsigned),
		Blog:                 controllers.NewBlogController(repos.Blog),
		Admin:                controllers.NewAdminController(journal, processor, workflow, repos.Throttle, rateLimitPrefix),
		APIRequestsPerMinute: env.GetEnvInt("API_RATE_LIMIT", 120),
		OwnerTokenSecret:     ownerSecret,
		Operator:             operator,
	}

	switch strings.ToLower(env.GetEnv("RATE_LIMIT_BACKEND", "memory")) {
	case "redis":
		if !cache.Available(2 * time.Second) {
			log.Fatal("RATE_LIMIT_BACKEND=redis but the cache is unreachable")
		}
		deps.Limits = ratelimit.NewRedisStore(cache.GetClient(), rateLimitPrefix)
		deps.LimiterStorage = cache.NewFiberStorage(limiterStorageDB)
		deps.Directory = controllers.NewDirectoryController(repos, detector, cache.Shared{})
	default:
		log.Println("Rate limits are per process (RATE_LIMIT_BACKEND=memory)")
		store := ratelimit.NewMemoryStore()
		store.StartJanitor(time.Minute)
		deps.Limits = store
		var shared controllers.Cache
		if cache.Available(time.Second) {
			shared = cache.Shared{}
		}
		deps.Directory = controllers.NewDirectoryController(repos, detector, shared)
	}

	return deps
}
