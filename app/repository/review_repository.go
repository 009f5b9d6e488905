package repository

import (
	"math"

	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/models"
)

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository instance
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create returns gorm.ErrRecordNotFound when the listing does not exist.
func (r *reviewRepository) Create(review *models.Review) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Listing{}).Where("id = ?", review.ListingID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Create(review).Error; err != nil {
			return err
		}

		var agg struct {
			Avg   float64
			Total int
		}
		if err := tx.Model(&models.Review{}).
			Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS total").
			Where("listing_id = ?", review.ListingID).
			Scan(&agg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Listing{}).Where("id = ?", review.ListingID).Updates(map[string]interface{}{
			"rating":       math.Round(agg.Avg*10) / 10,
			"review_count": agg.Total,
		}).Error
	})
}

// GetByListingID returns the newest reviews first.
func (r *reviewRepository) GetByListingID(listingID string, limit int) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.Where("listing_id = ?", listingID).
		Order("created_at DESC").Limit(limit).
		Find(&reviews).Error
	return reviews, err
}
