package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription links a profile to a listing with a plan. There is at most one
// row per (profile, listing); cancellation is a status change, rows are never
// deleted.
type Subscription struct {
	ID                   string    `gorm:"type:char(36);primaryKey" json:"id"`
	ProfileID            string    `gorm:"type:char(36);not null;index:ux_subscriptions_profile_listing,unique,priority:1" json:"profile_id"`
	ListingID            string    `gorm:"type:char(36);not null;index:ux_subscriptions_profile_listing,unique,priority:2;index" json:"listing_id"`
	Plan                 string    `gorm:"type:varchar(16);not null;default:'free';index" json:"plan"`
	Status               string    `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	StripeCustomerID     string    `gorm:"type:varchar(191)" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string   `gorm:"type:varchar(191);uniqueIndex" json:"stripe_subscription_id,omitempty"`
	CreatedAt            time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	s.ID = newID(s.ID)
	return nil
}

func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}
