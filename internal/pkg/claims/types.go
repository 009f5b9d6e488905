package claims

import (
	"context"
	"time"

	"github.com/crrelabs/HireAnyPro/internal/pkg/botcheck"
	"github.com/crrelabs/HireAnyPro/internal/pkg/outcome"
)

// Notifier delivers claim emails. Implementations log failures themselves.
type Notifier interface {
	SendClaimVerification(ctx context.Context, to, listingName, token, listingID string)
	NotifyNewClaim(ctx context.Context, listingName, listingID, email string)
}

// BotDetector judges whether a submission came from a bot.
type BotDetector interface {
	IsLikelyBot(ctx context.Context, s botcheck.Signals) bool
}

// Config holds the claim flow settings.
type Config struct {
	// HasVerificationColumns is false on schemas without verification_token
	// and expires_at. Claims are then activated immediately.
	HasVerificationColumns bool
	OwnerTokenSecret       string
	TokenTTL               time.Duration
}

// SubmitRequest is a claim request as received from the caller boundary.
type SubmitRequest struct {
	ListingID    string
	Email        string
	Honeypot     string
	CaptchaToken string
	RemoteIP     string
}

// Result is returned by every claim operation.
type Result struct {
	Status     outcome.Code `json:"status"`
	Email      string       `json:"email,omitempty"`
	ListingID  string       `json:"listingId,omitempty"`
	OwnerToken string       `json:"ownerToken,omitempty"`
}
