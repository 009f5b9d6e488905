package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is a public star rating left on a listing.
type Review struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	ListingID  string    `gorm:"type:char(36);not null;index" json:"listing_id" validate:"required,uuid"`
	AuthorName string    `gorm:"type:varchar(128);not null" json:"author_name" validate:"required,max=128"`
	Rating     int       `gorm:"not null" json:"rating" validate:"required,min=1,max=5"`
	Comment    string    `gorm:"type:text" json:"comment" validate:"max=5000"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	r.ID = newID(r.ID)
	return nil
}
