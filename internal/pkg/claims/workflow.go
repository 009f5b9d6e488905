// Package claims implements listing ownership claims: submission, email
// verification and activation.
package claims

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/models"
	"github.com/crrelabs/HireAnyPro/internal/pkg/apperror"
	"github.com/crrelabs/HireAnyPro/internal/pkg/botcheck"
	"github.com/crrelabs/HireAnyPro/internal/pkg/identity"
	"github.com/crrelabs/HireAnyPro/internal/pkg/outcome"
	"github.com/crrelabs/HireAnyPro/internal/pkg/security"
)

// Workflow turns an unclaimed listing and an email into a pending claim.
type Workflow struct {
	activator
	detector BotDetector
	cfg      Config
	now      func() time.Time
	newToken func() (string, error)
}

func NewWorkflow(db *gorm.DB, profiles *identity.Resolver, detector BotDetector, notifier Notifier, cfg Config) *Workflow {
	cfg.TokenTTL = defaultTTL(cfg.TokenTTL)
	return &Workflow{
		activator: activator{db: db, profiles: profiles, notifier: notifier, secret: cfg.OwnerTokenSecret},
		detector:  detector,
		cfg:       cfg,
		now:       time.Now,
		newToken:  security.NewVerificationToken,
	}
}

// SubmitClaim records a claim and mails its verification link.
func (w *Workflow) SubmitClaim(ctx context.Context, req SubmitRequest) (Result, error) {
	email := identity.NormalizeEmail(req.Email)
	listingID := strings.TrimSpace(req.ListingID)
	if listingID == "" || email == "" {
		return Result{}, apperror.InvalidInput("listingId and email are required")
	}

	// Bots get the same answer as people and nothing is stored.
	if w.detector != nil && w.detector.IsLikelyBot(ctx, botcheck.Signals{
		Honeypot:     req.Honeypot,
		CaptchaToken: req.CaptchaToken,
		RemoteIP:     req.RemoteIP,
	}) {
		return Result{Status: outcome.Pending, Email: email, ListingID: listingID}, nil
	}

	listing, code, err := w.loadClaimableListing(ctx, listingID)
	if err != nil || code != "" {
		return Result{Status: code, ListingID: listingID}, err
	}

	if _, err := w.profiles.ResolveProfile(ctx, email); err != nil {
		return Result{}, err
	}

	if !w.cfg.HasVerificationColumns {
		return w.submitDegraded(ctx, listing, email)
	}

	token, err := w.newToken()
	if err != nil {
		return Result{}, apperror.New(apperror.KindPersistence, "failed to generate verification token")
	}
	expiresAt := w.now().Add(w.cfg.TokenTTL)
	claim := &models.Claim{
		ListingID:         listing.ID,
		Email:             email,
		Verified:          false,
		VerificationToken: &token,
		ExpiresAt:         &expiresAt,
	}
	if err := w.db.WithContext(ctx).Create(claim).Error; err != nil {
		return Result{}, apperror.Persistence(err, "failed to create claim")
	}

	w.notifier.SendClaimVerification(ctx, email, listing.Name, token, listing.ID)
	log.Infof("[Claims] pending claim %s for listing %s", claim.ID, listing.ID)

	return Result{Status: outcome.Pending, Email: email, ListingID: listing.ID}, nil
}

// submitDegraded stores a claim without verification columns and activates it.
func (w *Workflow) submitDegraded(ctx context.Context, listing *models.Listing, email string) (Result, error) {
	log.Warnf("[Claims] SchemaDegraded: claims table has no verification columns, auto-verifying claim on listing %s", listing.ID)

	claim := &models.Claim{ListingID: listing.ID, Email: email, Verified: false}
	if err := w.db.WithContext(ctx).Omit("verification_token", "expires_at").Create(claim).Error; err != nil {
		return Result{}, apperror.Persistence(err, "failed to create claim")
	}
	return w.activate(ctx, claim)
}

// ResendVerification mails the newest pending link for (listing, email) again.
func (w *Workflow) ResendVerification(ctx context.Context, listingID, email string) (Result, error) {
	email = identity.NormalizeEmail(email)
	listingID = strings.TrimSpace(listingID)
	if listingID == "" || email == "" {
		return Result{}, apperror.InvalidInput("listingId and email are required")
	}

	listing, code, err := w.loadClaimableListing(ctx, listingID)
	if err != nil || code != "" {
		return Result{Status: code, ListingID: listingID}, err
	}

	var claim models.Claim
	err = w.db.WithContext(ctx).
		Where("listing_id = ? AND email = ? AND verified = ?", listingID, email, false).
		Order("created_at DESC").
		First(&claim).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{Status: outcome.NotFound, ListingID: listingID}, nil
	}
	if err != nil {
		return Result{}, apperror.Persistence(err, "failed to load claim")
	}

	if claim.VerificationToken == nil || *claim.VerificationToken == "" {
		return Result{Status: outcome.Invalid, ListingID: listingID}, nil
	}
	if claim.IsExpired(w.now()) {
		return Result{Status: outcome.Expired, Email: email, ListingID: listingID}, nil
	}

	w.notifier.SendClaimVerification(ctx, email, listing.Name, *claim.VerificationToken, listing.ID)
	return Result{Status: outcome.Pending, Email: email, ListingID: listingID}, nil
}

// loadClaimableListing returns the listing or the outcome that stops the flow.
func (w *Workflow) loadClaimableListing(ctx context.Context, listingID string) (*models.Listing, outcome.Code, error) {
	var listing models.Listing
	err := w.db.WithContext(ctx).First(&listing, "id = ?", listingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, outcome.NotFound, nil
	}
	if err != nil {
		return nil, "", apperror.Persistence(err, "failed to load listing")
	}
	if listing.Claimed {
		return nil, outcome.AlreadyClaimed, nil
	}
	return &listing, "", nil
}
