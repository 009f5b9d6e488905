package claims

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/models"
	"github.com/crrelabs/HireAnyPro/internal/pkg/apperror"
	"github.com/crrelabs/HireAnyPro/internal/pkg/identity"
	"github.com/crrelabs/HireAnyPro/internal/pkg/outcome"
	"github.com/crrelabs/HireAnyPro/internal/pkg/security"
)

var (
	errClaimAlreadyVerified = errors.New("claim already verified")
	errListingTaken         = errors.New("listing owned by another profile")
)

// activator applies the effects of a verified claim.
type activator struct {
	db       *gorm.DB
	profiles *identity.Resolver
	notifier Notifier
	secret   string
}

// activate marks the claim verified, takes ownership of the listing and
// ensures a free subscription, all in one transaction.
func (a *activator) activate(ctx context.Context, claim *models.Claim) (Result, error) {
	var profile *models.Profile
	var listing models.Listing

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		profile, err = a.profiles.WithDB(tx).ResolveProfile(ctx, claim.Email)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Claim{}).
			Where("id = ? AND verified = ?", claim.ID, false).
			Update("verified", true)
		if res.Error != nil {
			return apperror.Persistence(res.Error, "failed to mark claim verified")
		}
		if res.RowsAffected == 0 {
			return errClaimAlreadyVerified
		}

		res = tx.Model(&models.Listing{}).
			Where("id = ? AND (claimed = ? OR owner_id = ?)", claim.ListingID, false, profile.ID).
			Updates(map[string]interface{}{"claimed": true, "owner_id": profile.ID})
		if res.Error != nil {
			return apperror.Persistence(res.Error, "failed to claim listing")
		}
		if res.RowsAffected == 0 {
			return errListingTaken
		}

		sub := models.Subscription{}
		if err := tx.Attrs(models.Subscription{Plan: models.TierFree, Status: models.SubscriptionStatusActive}).
			FirstOrCreate(&sub, models.Subscription{ProfileID: profile.ID, ListingID: claim.ListingID}).Error; err != nil {
			return apperror.Persistence(err, "failed to create subscription")
		}

		if err := tx.First(&listing, "id = ?", claim.ListingID).Error; err != nil {
			return apperror.Persistence(err, "failed to reload listing")
		}
		return nil
	})

	switch {
	case errors.Is(err, errClaimAlreadyVerified):
		return a.alreadyVerified(ctx, claim)
	case errors.Is(err, errListingTaken):
		log.Infof("[Claims] listing %s was claimed by another profile before claim %s verified", claim.ListingID, claim.ID)
		return Result{Status: outcome.AlreadyClaimed, ListingID: claim.ListingID}, nil
	case err != nil:
		return Result{}, err
	}

	log.Infof("[Claims] listing %s claimed by profile %s", claim.ListingID, profile.ID)
	a.notifier.NotifyNewClaim(ctx, listing.Name, listing.ID, claim.Email)

	return Result{
		Status:     outcome.Verified,
		Email:      claim.Email,
		ListingID:  claim.ListingID,
		OwnerToken: a.ownerToken(profile.ID, claim.ListingID),
	}, nil
}

// alreadyVerified re-issues the owner token when the claimant still owns the listing.
func (a *activator) alreadyVerified(ctx context.Context, claim *models.Claim) (Result, error) {
	result := Result{Status: outcome.AlreadyVerified, Email: claim.Email, ListingID: claim.ListingID}

	profile, err := a.profiles.FindByEmail(ctx, claim.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, nil
		}
		return Result{}, apperror.Persistence(err, "failed to load profile")
	}
	var listing models.Listing
	if err := a.db.WithContext(ctx).First(&listing, "id = ?", claim.ListingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, nil
		}
		return Result{}, apperror.Persistence(err, "failed to load listing")
	}
	if listing.OwnerID != nil && *listing.OwnerID == profile.ID {
		result.OwnerToken = a.ownerToken(profile.ID, listing.ID)
	}
	return result, nil
}

func (a *activator) ownerToken(profileID, listingID string) string {
	if a.secret == "" {
		log.Warnf("[Claims] OWNER_TOKEN_SECRET not set, no owner token issued")
		return ""
	}
	token, err := security.GenerateOwnerToken(profileID, listingID, security.OwnerTokenTTL, a.secret)
	if err != nil {
		log.Errorf("[Claims] failed to sign owner token: %v", err)
		return ""
	}
	return token
}

func defaultTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return models.ClaimTTL
	}
	return ttl
}
