package usercontext

import "github.com/gofiber/fiber/v2"

// OwnerContext identifies a listing owner authenticated by an owner token.
type OwnerContext struct {
	ProfileID string `json:"profile_id"`
	ListingID string `json:"listing_id"`
}

// SetOwner stores the owner for the rest of the request.
func SetOwner(c *fiber.Ctx, owner OwnerContext) {
	c.Locals(KeyOwner, owner)
}

// GetOwner retrieves the owner context. ok is false when the request carried
// no valid owner token.
func GetOwner(c *fiber.Ctx) (OwnerContext, bool) {
	owner, ok := c.Locals(KeyOwner).(OwnerContext)
	return owner, ok && owner.ProfileID != ""
}

// GetOperator returns the basic auth user of an operator request, or "".
func GetOperator(c *fiber.Ctx) string {
	name, _ := c.Locals(KeyOperator).(string)
	return name
}
