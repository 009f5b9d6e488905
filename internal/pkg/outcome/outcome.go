package outcome

import "net/http"

// Code is a caller-facing result of a directory operation. Codes are not errors:
// AlreadyVerified and AlreadyClaimed are idempotent success signals.
type Code string

const (
	Pending         Code = "pending"
	Verified        Code = "verified"
	AlreadyVerified Code = "already_verified"
	Expired         Code = "expired"
	Invalid         Code = "invalid"
	NotFound        Code = "not_found"
	AlreadyClaimed  Code = "already_claimed"
	RateLimited     Code = "rate_limited"
)

// HTTPStatus maps a code onto the status returned by the JSON API.
func (c Code) HTTPStatus() int {
	switch c {
	case Pending:
		return http.StatusAccepted
	case Verified, AlreadyVerified:
		return http.StatusOK
	case Expired:
		return http.StatusGone
	case Invalid:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case AlreadyClaimed:
		return http.StatusConflict
	case RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Message is the user guidance shown for a code.
func (c Code) Message() string {
	switch c {
	case Pending:
		return "Check your email for a verification link."
	case Verified:
		return "Your listing has been claimed."
	case AlreadyVerified:
		return "Already verified."
	case Expired:
		return "Verification link has expired. Please claim again."
	case Invalid:
		return "Invalid verification link."
	case NotFound:
		return "Listing not found."
	case AlreadyClaimed:
		return "This listing has already been claimed."
	case RateLimited:
		return "Too many requests. Please try again later."
	default:
		return "Internal error."
	}
}

// Success reports whether the caller should treat the code as a positive result.
func (c Code) Success() bool {
	switch c {
	case Pending, Verified, AlreadyVerified:
		return true
	default:
		return false
	}
}
