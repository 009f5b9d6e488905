package repository

import (
	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/models"
)

// ListingFilter narrows a directory search. Zero values mean "no filter".
type ListingFilter struct {
	Query        string
	CategorySlug string
	City         string
	MinRating    float64
	Offset       int
	Limit        int
}

// ListingRepository defines the interface for listing-related database operations
type ListingRepository interface {
	GetByID(id string) (*models.Listing, error)
	GetBySlug(slug string) (*models.Listing, error)
	Search(filter ListingFilter) ([]models.Listing, int64, error)
	UpdateFields(id string, fields map[string]interface{}) error
}

// CategoryRepository defines the interface for category lookups
type CategoryRepository interface {
	GetAll() ([]models.Category, error)
	GetByID(id string) (*models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
}

// ReviewRepository defines the interface for review-related database operations
type ReviewRepository interface {
	// Create stores the review and recomputes the listing's rating and
	// review count in the same transaction.
	Create(review *models.Review) error
	GetByListingID(listingID string, limit int) ([]models.Review, error)
}

// BlogRepository defines the interface for blog-related database operations
type BlogRepository interface {
	GetPublished(category string, offset, limit int) ([]models.BlogPost, int64, error)
	GetPublishedBySlug(slug string) (*models.BlogPost, error)
	GetRelated(post *models.BlogPost, limit int) ([]models.BlogPost, error)
	GetCategories() ([]string, error)
}

// SubscriptionRepository defines the interface for subscription lookups
type SubscriptionRepository interface {
	HasActive(profileID, listingID string) (bool, error)
	GetByListingID(listingID string) ([]models.Subscription, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Listing      ListingRepository
	Category     CategoryRepository
	Review       ReviewRepository
	Blog         BlogRepository
	Subscription SubscriptionRepository
	Throttle     ThrottleRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Listing:      NewListingRepository(db),
		Category:     NewCategoryRepository(db),
		Review:       NewReviewRepository(db),
		Blog:         NewBlogRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Throttle:     NewThrottleRepository(nil),
	}
}
