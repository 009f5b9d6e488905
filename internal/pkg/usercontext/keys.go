package usercontext

// Shared Locals keys used across controllers and middlewares
const (
	KeyOwner    = "owner_context"
	KeyOperator = "operator"
)
