package billing

// EventKind is the provider-neutral kind of a payment event.
type EventKind string

const (
	KindCheckoutCompleted    EventKind = "checkout_completed"
	KindSubscriptionCanceled EventKind = "subscription_canceled"
)

// PaymentEvent is a parsed payment provider notification.
type PaymentEvent struct {
	Kind           EventKind
	EventID        string
	EventType      string
	SubscriptionID string
	CustomerID     string
	Email          string
	ListingID      string
	Plan           string
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	SubjectID       string
	PayloadJSON     string
	SignatureValid  bool
}

// Action describes what reconciliation did with an event.
type Action string

const (
	ActionUpgraded   Action = "upgraded"
	ActionCanceled   Action = "canceled"
	ActionLateCancel Action = "landed_canceled"
	ActionNoop       Action = "noop"
)

// ReconcileResult summarizes one reconciled event.
type ReconcileResult struct {
	Action    Action
	ProfileID string
	ListingID string
	Plan      string
}
