package models

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Listing tiers, ordered by visibility.
const (
	TierFree     = "free"
	TierPro      = "pro"
	TierFeatured = "featured"
)

// Listing represents a business in the directory. Claimed listings always carry
// an OwnerID; Tier mirrors the plan of the owner's current subscription.
type Listing struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	Slug        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug" validate:"required,max=255"`
	Description string    `gorm:"type:text" json:"description"`
	CategoryID  *string   `gorm:"type:char(36);index" json:"category_id,omitempty"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Address     string    `gorm:"type:varchar(255)" json:"address"`
	City        string    `gorm:"type:varchar(128);index" json:"city"`
	State       string    `gorm:"type:varchar(32);default:'FL'" json:"state"`
	Zip         string    `gorm:"type:varchar(16)" json:"zip"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Phone       string    `gorm:"type:varchar(64)" json:"phone"`
	Email       string    `gorm:"type:varchar(255)" json:"email"`
	Website     string    `gorm:"type:varchar(255)" json:"website"`
	Hours       string    `gorm:"type:text" json:"hours"`
	Rating      float64   `gorm:"default:0;index" json:"rating"`
	ReviewCount int       `gorm:"default:0" json:"review_count"`
	Claimed     bool      `gorm:"default:false;index" json:"claimed"`
	OwnerID     *string   `gorm:"type:char(36);index" json:"owner_id,omitempty"`
	Tier        string    `gorm:"type:varchar(16);not null;default:'free';index" json:"tier"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Listing) TableName() string {
	return "listings"
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	l.ID = newID(l.ID)
	if l.Slug == "" {
		l.Slug = slug.Make(strings.TrimSpace(l.Name + " " + l.City))
	}
	if l.Tier == "" {
		l.Tier = TierFree
	}
	return nil
}
