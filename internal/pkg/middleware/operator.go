package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"golang.org/x/crypto/bcrypt"

	"github.com/crrelabs/HireAnyPro/internal/pkg/env"
	"github.com/crrelabs/HireAnyPro/internal/pkg/usercontext"
)

// RequireOperator protects operator routes with basic auth against a bcrypt
// password hash. Without a configured hash every request is refused.
func RequireOperator(user, passwordHash string) fiber.Handler {
	if passwordHash == "" {
		log.Warn("[Auth] ADMIN_PASSWORD_HASH is not set, operator routes are locked")
	}
	return basicauth.New(basicauth.Config{
		Realm: "HireAnyPro Operator",
		Authorizer: func(u, p string) bool {
			if passwordHash == "" || u != user {
				return false
			}
			return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(p)) == nil
		},
		ContextUsername: usercontext.KeyOperator,
	})
}

// RequireOperatorFromEnv reads ADMIN_USER and ADMIN_PASSWORD_HASH.
func RequireOperatorFromEnv() fiber.Handler {
	return RequireOperator(env.GetEnv("ADMIN_USER", "admin"), env.GetEnv("ADMIN_PASSWORD_HASH", ""))
}
