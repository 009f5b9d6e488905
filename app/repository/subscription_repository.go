package repository

import (
	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/models"
)

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// HasActive reports whether the profile holds an active subscription of any
// plan for the listing.
func (r *subscriptionRepository) HasActive(profileID, listingID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).
		Where("profile_id = ? AND listing_id = ? AND status = ?", profileID, listingID, models.SubscriptionStatusActive).
		Count(&count).Error
	return count > 0, err
}

func (r *subscriptionRepository) GetByListingID(listingID string) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("listing_id = ?", listingID).Order("created_at ASC").Find(&subs).Error
	return subs, err
}
