package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/crrelabs/HireAnyPro/app/models"
	"github.com/crrelabs/HireAnyPro/internal/pkg/apperror"
	"github.com/crrelabs/HireAnyPro/internal/pkg/env"
)

var ErrCheckoutNotConfigured = errors.New("checkout is not configured")

// CheckoutRequest asks for a hosted Stripe Checkout page for a paid plan.
type CheckoutRequest struct {
	Plan      string
	ListingID string
	Email     string
}

// CheckoutSession is the part of Stripe's response the caller needs.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutClient creates subscription checkout sessions with stripe-go.
type CheckoutClient struct {
	sessions checkoutsession.Client
	appURL   string
	prices   map[string]string
	now      func() time.Time
}

// NewCheckoutClient builds a client on its own Stripe backend. An empty
// baseURL uses api.stripe.com.
func NewCheckoutClient(apiKey, baseURL, appURL string, prices map[string]string) *CheckoutClient {
	cfg := &stripe.BackendConfig{
		HTTPClient: &http.Client{Timeout: 12 * time.Second},
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.URL = stripe.String(baseURL)
	}
	return &CheckoutClient{
		sessions: checkoutsession.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, cfg),
			Key: strings.TrimSpace(apiKey),
		},
		appURL: strings.TrimRight(appURL, "/"),
		prices: prices,
		now:    time.Now,
	}
}

// NewCheckoutClientFromEnv reads STRIPE_SECRET_KEY and the STRIPE_PRICE_* ids.
func NewCheckoutClientFromEnv() *CheckoutClient {
	return NewCheckoutClient(
		env.GetEnv("STRIPE_SECRET_KEY", ""),
		env.GetEnv("STRIPE_API_BASE", ""),
		env.AppURL(),
		map[string]string{
			models.TierPro:      env.GetEnv("STRIPE_PRICE_PRO", ""),
			models.TierFeatured: env.GetEnv("STRIPE_PRICE_FEATURED", ""),
		},
	)
}

// CreateSession validates the request and creates the session.
func (c *CheckoutClient) CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	plan := strings.ToLower(strings.TrimSpace(req.Plan))
	if plan != models.TierPro && plan != models.TierFeatured {
		return nil, apperror.InvalidInput("plan must be pro or featured")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, apperror.InvalidInput("email is required")
	}
	price := strings.TrimSpace(c.prices[plan])
	if c.sessions.Key == "" || price == "" {
		return nil, apperror.Transport(ErrCheckoutNotConfigured, "payments are not available")
	}
	listingID := strings.TrimSpace(req.ListingID)

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail: stripe.String(email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(price), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(c.appURL + "/dashboard?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(c.appURL + "/pricing"),
		Metadata: map[string]string{
			"listingId": listingID,
			"email":     email,
			"plan":      plan,
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"listingId": listingID},
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(c.idempotencyKey(email, listingID, plan))

	sess, err := c.sessions.New(params)
	if err != nil {
		return nil, apperror.Transport(err, "failed to create checkout session")
	}
	if sess.ID == "" || sess.URL == "" {
		return nil, apperror.Transport(errors.New("stripe response missing session url"), "failed to create checkout session")
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// idempotencyKey collapses double submits of the same checkout within a
// ten minute bucket into one Stripe session.
func (c *CheckoutClient) idempotencyKey(email, listingID, plan string) string {
	bucket := c.now().UTC().Truncate(10 * time.Minute).Unix()
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d", email, listingID, plan, bucket)))
	return "checkout:" + hex.EncodeToString(sum[:16])
}
