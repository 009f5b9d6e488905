package claims

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/models"
	"github.com/crrelabs/HireAnyPro/internal/pkg/apperror"
	"github.com/crrelabs/HireAnyPro/internal/pkg/identity"
	"github.com/crrelabs/HireAnyPro/internal/pkg/outcome"
)

// Gate consumes verification tokens.
type Gate struct {
	activator
	hasTokens bool
	now       func() time.Time
}

func NewGate(db *gorm.DB, profiles *identity.Resolver, notifier Notifier, cfg Config) *Gate {
	return &Gate{
		activator: activator{db: db, profiles: profiles, notifier: notifier, secret: cfg.OwnerTokenSecret},
		hasTokens: cfg.HasVerificationColumns,
		now:       time.Now,
	}
}

// VerifyClaim promotes the claim matching token and listingID.
// Outcomes are checked in order: Invalid, AlreadyVerified, Expired.
func (g *Gate) VerifyClaim(ctx context.Context, token, listingID string) (Result, error) {
	token = strings.TrimSpace(token)
	listingID = strings.TrimSpace(listingID)
	// Without a token column no link was ever issued.
	if token == "" || listingID == "" || !g.hasTokens {
		return Result{Status: outcome.Invalid}, nil
	}

	var claim models.Claim
	err := g.db.WithContext(ctx).
		Where("verification_token = ? AND listing_id = ?", token, listingID).
		First(&claim).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{Status: outcome.Invalid}, nil
	}
	if err != nil {
		return Result{}, apperror.Persistence(err, "failed to load claim")
	}

	if claim.Verified {
		return g.alreadyVerified(ctx, &claim)
	}
	if claim.IsExpired(g.now()) {
		return Result{Status: outcome.Expired, Email: claim.Email, ListingID: claim.ListingID}, nil
	}
	return g.activate(ctx, &claim)
}
