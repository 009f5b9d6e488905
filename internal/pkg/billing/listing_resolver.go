package billing

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/models"
)

// ListingResolver infers which listing a payment is for when checkout
// metadata carried no listing id.
type ListingResolver func(ctx context.Context, profile *models.Profile) (listingID string, ok bool, err error)

// DefaultListingResolvers tries the profile's newest active free subscription,
// then its newest verified claim.
func DefaultListingResolvers(db *gorm.DB) []ListingResolver {
	return []ListingResolver{
		ActiveFreeSubscription(db),
		LatestVerifiedClaim(db),
	}
}

// ActiveFreeSubscription resolves to the listing of the profile's most recent
// active free subscription, the usual case of a claimant upgrading.
func ActiveFreeSubscription(db *gorm.DB) ListingResolver {
	return func(ctx context.Context, profile *models.Profile) (string, bool, error) {
		var sub models.Subscription
		err := db.WithContext(ctx).
			Where("profile_id = ? AND plan = ? AND status = ?", profile.ID, models.TierFree, models.SubscriptionStatusActive).
			Order("created_at DESC").
			First(&sub).Error
		return found(sub.ListingID, err)
	}
}

// LatestVerifiedClaim resolves to the listing of the newest verified claim by
// the profile's email.
func LatestVerifiedClaim(db *gorm.DB) ListingResolver {
	return func(ctx context.Context, profile *models.Profile) (string, bool, error) {
		var claim models.Claim
		err := db.WithContext(ctx).
			Where("email = ? AND verified = ?", profile.Email, true).
			Order("created_at DESC").
			First(&claim).Error
		return found(claim.ListingID, err)
	}
}

func found(listingID string, err error) (string, bool, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return listingID, listingID != "", nil
}
