// Package identity maps email addresses to profiles.
package identity

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crrelabs/HireAnyPro/app/models"
	"github.com/crrelabs/HireAnyPro/internal/pkg/apperror"
)

// Resolver upserts profiles keyed by email.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// WithDB returns a resolver bound to db, typically a transaction handle.
func (r *Resolver) WithDB(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// NormalizeEmail trims and lowercases an address so one mailbox maps to one profile.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ResolveProfile returns the profile for email, creating it if absent.
func (r *Resolver) ResolveProfile(ctx context.Context, email string) (*models.Profile, error) {
	return r.ResolveProfileWithCustomer(ctx, email, "")
}

// ResolveProfileWithCustomer is ResolveProfile that also records the payment
// customer id when one is supplied and differs from the stored value.
func (r *Resolver) ResolveProfileWithCustomer(ctx context.Context, email, stripeCustomerID string) (*models.Profile, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperror.InvalidInput("email is required")
	}
	db := r.db.WithContext(ctx)

	candidate := &models.Profile{Email: email, StripeCustomerID: strings.TrimSpace(stripeCustomerID)}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(candidate).Error; err != nil {
		return nil, apperror.Persistence(err, "failed to upsert profile")
	}

	var profile models.Profile
	if err := db.Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, apperror.Persistence(err, "failed to load profile")
	}

	customerID := strings.TrimSpace(stripeCustomerID)
	if customerID != "" && profile.StripeCustomerID != customerID {
		if err := db.Model(&profile).Update("stripe_customer_id", customerID).Error; err != nil {
			return nil, apperror.Persistence(err, "failed to attach customer id")
		}
		profile.StripeCustomerID = customerID
	}
	return &profile, nil
}

// FindByEmail returns the profile for email without creating one.
func (r *Resolver) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
