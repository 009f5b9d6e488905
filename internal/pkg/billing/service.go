package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/models"
)

// Service owns the webhook event journal.
type Service struct {
	repo Repository
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// RecordWebhookEvent persists webhook payloads idempotently. It returns
// created=false when the (provider, event id) pair was already journaled.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		SubjectID:       strings.TrimSpace(in.SubjectID),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(ctx, event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(ctx, webhookEventID, errMsg)
}

// GetWebhookEvent loads a journaled event for replay.
func (s *Service) GetWebhookEvent(ctx context.Context, id uint) (*models.BillingWebhookEvent, error) {
	return s.repo.GetWebhookEvent(ctx, id)
}

// ListWebhookEvents pages through the journal, newest first.
func (s *Service) ListWebhookEvents(ctx context.Context, onlyUnprocessed bool, page, perPage int) ([]models.BillingWebhookEvent, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 50
	}
	return s.repo.ListWebhookEvents(ctx, onlyUnprocessed, (page-1)*perPage, perPage)
}

// WasCanceled reports whether a cancellation for the provider subscription
// has already been journaled.
func (s *Service) WasCanceled(ctx context.Context, subscriptionID string) (bool, error) {
	return s.repo.HasWebhookEvent(ctx, models.BillingProviderStripe, StripeEventSubscriptionDeleted, subscriptionID)
}
