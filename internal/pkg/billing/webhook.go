package billing

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2/log"

	"github.com/crrelabs/HireAnyPro/app/models"
)

// WebhookOutcome describes how a delivery was handled.
type WebhookOutcome struct {
	JournalID uint
	Duplicate bool
	Ignored   bool
	Result    ReconcileResult
	// Recovered holds ErrMissingListingLink or ErrMissingEmail when the event
	// was accepted without a domain change.
	Recovered error
}

// WebhookProcessor journals Stripe deliveries and reconciles them once.
type WebhookProcessor struct {
	journal    *Service
	reconciler *Reconciler
}

func NewWebhookProcessor(journal *Service, reconciler *Reconciler) *WebhookProcessor {
	return &WebhookProcessor{journal: journal, reconciler: reconciler}
}

// Process handles one verified delivery. Deliveries whose first attempt
// failed with a persistence error are reprocessed on retry; everything else
// already processed is reported as a duplicate.
func (p *WebhookProcessor) Process(ctx context.Context, payload []byte, signatureValid bool) (WebhookOutcome, error) {
	event, err := decodeStripeEvent(payload)
	if err != nil {
		return WebhookOutcome{}, err
	}
	ev, parseErr := paymentEventFrom(event)

	subjectID := ""
	if ev != nil {
		subjectID = ev.SubscriptionID
	}
	created, stored, err := p.journal.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        models.BillingProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		SubjectID:       subjectID,
		PayloadJSON:     string(payload),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return WebhookOutcome{}, err
	}
	out := WebhookOutcome{JournalID: stored.ID}
	if !created && stored.ProcessedAt != nil {
		out.Duplicate = true
		return out, nil
	}

	return p.reconcile(ctx, out, ev, parseErr)
}

// Replay re-runs reconciliation for a journaled event regardless of its state.
func (p *WebhookProcessor) Replay(ctx context.Context, journalID uint) (WebhookOutcome, error) {
	stored, err := p.journal.GetWebhookEvent(ctx, journalID)
	if err != nil {
		return WebhookOutcome{}, err
	}
	ev, parseErr := ParseStripeEvent([]byte(stored.PayloadJSON))
	log.Infof("[Billing] replaying webhook event %d (%s)", stored.ID, stored.ProviderEventID)
	return p.reconcile(ctx, WebhookOutcome{JournalID: stored.ID}, ev, parseErr)
}

func (p *WebhookProcessor) reconcile(ctx context.Context, out WebhookOutcome, ev *PaymentEvent, parseErr error) (WebhookOutcome, error) {
	if errors.Is(parseErr, ErrEventIgnored) {
		out.Ignored = true
		return out, p.journal.MarkWebhookProcessed(ctx, out.JournalID, nil)
	}
	if parseErr != nil {
		_ = p.journal.MarkWebhookProcessed(ctx, out.JournalID, parseErr)
		return out, parseErr
	}

	res, err := p.reconciler.OnPaymentEvent(ctx, ev)
	out.Result = res
	if err != nil && !IsRecovered(err) {
		log.Errorf("[Billing] reconciling event %s failed: %v", ev.EventID, err)
		return out, err
	}
	out.Recovered = err
	return out, p.journal.MarkWebhookProcessed(ctx, out.JournalID, err)
}
