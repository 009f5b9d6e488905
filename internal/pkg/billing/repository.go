package billing

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crrelabs/HireAnyPro/app/models"
)

// Repository provides the webhook journal used by the billing service.
type Repository interface {
	CreateWebhookEventIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error
	GetWebhookEvent(ctx context.Context, id uint) (*models.BillingWebhookEvent, error)
	ListWebhookEvents(ctx context.Context, onlyUnprocessed bool, offset, limit int) ([]models.BillingWebhookEvent, error)
	HasWebhookEvent(ctx context.Context, provider, eventType, subjectID string) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateWebhookEventIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	db := r.db.WithContext(ctx)
	tx := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.WithContext(ctx).Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) GetWebhookEvent(ctx context.Context, id uint) (*models.BillingWebhookEvent, error) {
	var event models.BillingWebhookEvent
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *gormRepository) ListWebhookEvents(ctx context.Context, onlyUnprocessed bool, offset, limit int) ([]models.BillingWebhookEvent, error) {
	var events []models.BillingWebhookEvent
	q := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit)
	if onlyUnprocessed {
		q = q.Where("processed_at IS NULL OR processing_error <> ?", "")
	}
	err := q.Find(&events).Error
	return events, err
}

func (r *gormRepository) HasWebhookEvent(ctx context.Context, provider, eventType, subjectID string) (bool, error) {
	if subjectID == "" {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BillingWebhookEvent{}).
		Where("provider = ? AND event_type = ? AND subject_id = ?", provider, eventType, subjectID).
		Count(&count).Error
	return count > 0, err
}
