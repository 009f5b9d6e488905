package billing

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v82"
)

var (
	ErrInvalidPayload = errors.New("invalid webhook payload")
	ErrEventIgnored   = errors.New("webhook event ignored")
)

const (
	StripeEventCheckoutCompleted   = string(stripe.EventTypeCheckoutSessionCompleted)
	StripeEventSubscriptionDeleted = string(stripe.EventTypeCustomerSubscriptionDeleted)
)

func decodeStripeEvent(payload []byte) (stripe.Event, error) {
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return event, ErrInvalidPayload
	}
	return event, nil
}

// ParseStripeEvent extracts the fields reconciliation needs. Event types other
// than completed checkouts and deleted subscriptions return ErrEventIgnored.
func ParseStripeEvent(payload []byte) (*PaymentEvent, error) {
	event, err := decodeStripeEvent(payload)
	if err != nil {
		return nil, err
	}
	return paymentEventFrom(event)
}

func paymentEventFrom(event stripe.Event) (*PaymentEvent, error) {
	eventType := strings.TrimSpace(string(event.Type))
	if eventType != StripeEventCheckoutCompleted && eventType != StripeEventSubscriptionDeleted {
		return nil, ErrEventIgnored
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, ErrInvalidPayload
	}

	if eventType == StripeEventCheckoutCompleted {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, ErrInvalidPayload
		}
		ev := &PaymentEvent{
			Kind:      KindCheckoutCompleted,
			EventID:   event.ID,
			EventType: eventType,
			Email:     checkoutEmail(&session),
			ListingID: strings.TrimSpace(session.Metadata["listingId"]),
			Plan:      strings.TrimSpace(session.Metadata["plan"]),
		}
		if session.Subscription != nil {
			ev.SubscriptionID = strings.TrimSpace(session.Subscription.ID)
		}
		if session.Customer != nil {
			ev.CustomerID = strings.TrimSpace(session.Customer.ID)
		}
		return ev, nil
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, ErrInvalidPayload
	}
	if strings.TrimSpace(sub.ID) == "" {
		return nil, ErrInvalidPayload
	}
	ev := &PaymentEvent{
		Kind:           KindSubscriptionCanceled,
		EventID:        event.ID,
		EventType:      eventType,
		SubscriptionID: strings.TrimSpace(sub.ID),
		ListingID:      strings.TrimSpace(sub.Metadata["listingId"]),
	}
	if sub.Customer != nil {
		ev.CustomerID = strings.TrimSpace(sub.Customer.ID)
	}
	return ev, nil
}

// checkoutEmail prefers metadata, then the session email, then billing details.
func checkoutEmail(s *stripe.CheckoutSession) string {
	if e := strings.TrimSpace(s.Metadata["email"]); e != "" {
		return e
	}
	if e := strings.TrimSpace(s.CustomerEmail); e != "" {
		return e
	}
	if s.CustomerDetails != nil {
		return strings.TrimSpace(s.CustomerDetails.Email)
	}
	return ""
}
