package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/crrelabs/HireAnyPro/internal/pkg/security"
	"github.com/crrelabs/HireAnyPro/internal/pkg/usercontext"
)

// OwnerTokenHeader carries the owner token for clients that cannot set Authorization.
const OwnerTokenHeader = "X-Owner-Token"

// RequireOwnerToken authenticates requests carrying an owner token issued at
// claim verification. The token may also be sent as "ownerToken" in a JSON body.
func RequireOwnerToken(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractOwnerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing owner token"})
		}
		if secret == "" {
			log.Warn("[Auth] OWNER_TOKEN_SECRET is not set, owner requests are rejected")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "Listing updates are disabled"})
		}

		claims, err := security.VerifyOwnerToken(token, secret)
		if err != nil {
			msg := "Invalid owner token"
			if errors.Is(err, security.ErrExpiredToken) {
				msg = "Owner token expired, verify your claim again"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": msg})
		}

		usercontext.SetOwner(c, usercontext.OwnerContext{ProfileID: claims.ProfileID, ListingID: claims.ListingID})
		return c.Next()
	}
}

func extractOwnerToken(c *fiber.Ctx) string {
	if auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); auth != "" {
		if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
			return strings.TrimSpace(auth[7:])
		}
	}
	if v := strings.TrimSpace(c.Get(OwnerTokenHeader)); v != "" {
		return v
	}
	var body struct {
		OwnerToken string `json:"ownerToken"`
	}
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		if err := c.BodyParser(&body); err == nil {
			return strings.TrimSpace(body.OwnerToken)
		}
	}
	return ""
}
