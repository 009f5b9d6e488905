package models

import (
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// BlogPost represents a markdown article in the blog.
type BlogPost struct {
	ID            string     `gorm:"type:char(36);primaryKey" json:"id"`
	Title         string     `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=3,max=255"`
	Slug          string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug" validate:"required,min=3,max=255"`
	Excerpt       string     `gorm:"type:text" json:"excerpt"`
	Content       string     `gorm:"type:text" json:"content" validate:"required"`
	Author        string     `gorm:"type:varchar(128)" json:"author"`
	Category      string     `gorm:"type:varchar(128);index" json:"category"`
	Tags          string     `gorm:"type:varchar(512)" json:"tags"`
	FeaturedImage string     `gorm:"type:varchar(512)" json:"featured_image"`
	Published     bool       `gorm:"default:false;index" json:"published"`
	PublishedAt   *time.Time `gorm:"type:timestamp;index" json:"published_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}

func (b *BlogPost) BeforeCreate(tx *gorm.DB) error {
	b.ID = newID(b.ID)
	if b.Slug == "" {
		b.Slug = slug.Make(b.Title)
	}
	return nil
}
