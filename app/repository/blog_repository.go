package repository

import (
	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/models"
)

// blogRepository implements the BlogRepository interface
type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository creates a new blog repository instance
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) published() *gorm.DB {
	return r.db.Model(&models.BlogPost{}).Where("published = ?", true)
}

// GetPublished retrieves published posts newest first, optionally by category
func (r *blogRepository) GetPublished(category string, offset, limit int) ([]models.BlogPost, int64, error) {
	q := r.published()
	if category != "" {
		q = q.Where("category = ?", category)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var posts []models.BlogPost
	err := q.Order("published_at DESC").Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&posts).Error
	return posts, total, err
}

// GetPublishedBySlug retrieves a published post by its slug
func (r *blogRepository) GetPublishedBySlug(slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.published().Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetRelated returns other published posts from the same category
func (r *blogRepository) GetRelated(post *models.BlogPost, limit int) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	if post.Category == "" {
		return posts, nil
	}
	err := r.published().
		Where("category = ? AND id <> ?", post.Category, post.ID).
		Order("published_at DESC").Limit(limit).
		Find(&posts).Error
	return posts, err
}

// GetCategories lists the distinct categories of published posts
func (r *blogRepository) GetCategories() ([]string, error) {
	var categories []string
	err := r.published().
		Where("category <> ?", "").
		Distinct("category").Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}
