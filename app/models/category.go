package models

import (
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Category groups listings by trade (plumbing, roofing, ...).
type Category struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	Slug      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug" validate:"required,max=255"`
	Icon      string    `gorm:"type:varchar(64)" json:"icon"`
	ParentID  *string   `gorm:"type:char(36);index" json:"parent_id,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	c.ID = newID(c.ID)
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	return nil
}
