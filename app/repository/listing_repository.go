package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/models"
)

// tierOrder sorts featured before pro before free.
const tierOrder = "CASE tier WHEN 'featured' THEN 2 WHEN 'pro' THEN 1 ELSE 0 END DESC"

// listingRepository implements the ListingRepository interface
type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository instance
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// GetByID retrieves a listing by its ID
func (r *listingRepository) GetByID(id string) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.Preload("Category").Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetBySlug retrieves a listing by its slug
func (r *listingRepository) GetBySlug(slug string) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.Preload("Category").Where("slug = ?", slug).First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// Search returns one page of matching listings and the total match count.
func (r *listingRepository) Search(f ListingFilter) ([]models.Listing, int64, error) {
	q := r.db.Model(&models.Listing{})
	if s := strings.ToLower(strings.TrimSpace(f.Query)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.CategorySlug != "" {
		q = q.Where("category_id IN (?)", r.db.Model(&models.Category{}).Select("id").Where("slug = ?", f.CategorySlug))
	}
	if city := strings.TrimSpace(f.City); city != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(city))
	}
	if f.MinRating > 0 {
		q = q.Where("rating >= ?", f.MinRating)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []models.Listing
	err := q.Preload("Category").
		Order(tierOrder).Order("rating DESC").Order("name ASC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&listings).Error
	return listings, total, err
}

// UpdateFields applies a partial update. Only the given columns are written.
func (r *listingRepository) UpdateFields(id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.Model(&models.Listing{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
