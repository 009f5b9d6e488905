package models

import (
	"time"

	"gorm.io/gorm"
)

// ClaimTTL is how long a verification link stays valid.
const ClaimTTL = 24 * time.Hour

// Claim is a pending or verified request by an email to own a listing.
// VerificationToken and ExpiresAt are nil on deployments whose claims table
// predates email verification.
type Claim struct {
	ID                string     `gorm:"type:char(36);primaryKey" json:"id"`
	ListingID         string     `gorm:"type:char(36);not null;index" json:"listing_id"`
	Email             string     `gorm:"type:varchar(255);not null;index" json:"email" validate:"required,email"`
	Verified          bool       `gorm:"default:false;index" json:"verified"`
	VerificationToken *string    `gorm:"type:varchar(128);index" json:"-"`
	ExpiresAt         *time.Time `gorm:"type:timestamp" json:"expires_at,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Claim) TableName() string {
	return "claims"
}

func (c *Claim) BeforeCreate(tx *gorm.DB) error {
	c.ID = newID(c.ID)
	return nil
}

// IsExpired reports whether the claim's link is past its expiry at now.
func (c *Claim) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}
