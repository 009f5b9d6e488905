package ratelimit

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/crrelabs/HireAnyPro/internal/pkg/outcome"
)

// KeyFunc derives the bucket key for a request.
type KeyFunc func(c *fiber.Ctx) string

// ByClientIP buckets requests per route name and client address.
func ByClientIP(name string) KeyFunc {
	return func(c *fiber.Ctx) string {
		return name + ":" + ClientIP(c)
	}
}

// ClientIP prefers Cloudflare's header, then the first X-Forwarded-For hop,
// then X-Real-IP, then the socket address.
func ClientIP(c *fiber.Ctx) string {
	if ip := strings.TrimSpace(c.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if ip := c.IP(); ip != "" {
		return ip
	}
	return "unknown"
}

// Middleware rejects requests over limit per window with 429. Store errors
// let the request through.
func Middleware(store Store, limit int, window time.Duration, keyFn KeyFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := keyFn(c)
		d, err := store.Allow(c.UserContext(), key, limit, window)
		if err != nil {
			log.Warnf("[RateLimit] store error for %s, allowing request: %v", key, err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status": outcome.RateLimited,
				"error":  outcome.RateLimited.Message(),
			})
		}
		return c.Next()
	}
}
