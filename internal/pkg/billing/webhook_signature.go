package billing

import (
	"errors"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// DefaultSignatureTolerance is the maximum age of a signed Stripe delivery.
const DefaultSignatureTolerance = webhook.DefaultTolerance

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrSignatureExpired = errors.New("webhook signature timestamp outside tolerance")
)

// ConstructStripeEvent checks the Stripe-Signature header and decodes the
// delivery. The endpoint accepts any API version the account sends.
func ConstructStripeEvent(payload []byte, header, secret string, tolerance time.Duration) (stripe.Event, error) {
	header = strings.TrimSpace(header)
	secret = strings.TrimSpace(secret)
	if header == "" || secret == "" {
		return stripe.Event{}, ErrMissingSignature
	}
	if tolerance <= 0 {
		tolerance = DefaultSignatureTolerance
	}

	event, err := webhook.ConstructEventWithOptions(payload, header, secret, webhook.ConstructEventOptions{
		Tolerance:                tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	switch {
	case err == nil:
		return event, nil
	case errors.Is(err, webhook.ErrNotSigned):
		return stripe.Event{}, ErrMissingSignature
	case errors.Is(err, webhook.ErrTooOld):
		return stripe.Event{}, ErrSignatureExpired
	case errors.Is(err, webhook.ErrInvalidHeader), errors.Is(err, webhook.ErrNoValidSignature):
		return stripe.Event{}, ErrInvalidSignature
	default:
		// Signed but not a decodable event.
		return stripe.Event{}, ErrInvalidPayload
	}
}
