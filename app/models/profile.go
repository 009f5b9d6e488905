package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is an account keyed by email. Profiles are created on first touch by
// a claim or a payment and are never deleted.
type Profile struct {
	ID               string    `gorm:"type:char(36);primaryKey" json:"id"`
	Email            string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	StripeCustomerID string    `gorm:"type:varchar(191);index" json:"stripe_customer_id,omitempty"`
	MarketingOptIn   bool      `gorm:"default:false" json:"marketing_opt_in"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	p.ID = newID(p.ID)
	return nil
}
