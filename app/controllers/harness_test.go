package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/repository"
	"github.com/crrelabs/HireAnyPro/internal/pkg/billing"
	"github.com/crrelabs/HireAnyPro/internal/pkg/claims"
	"github.com/crrelabs/HireAnyPro/internal/pkg/identity"
	"github.com/crrelabs/HireAnyPro/internal/pkg/middleware"
	"github.com/crrelabs/HireAnyPro/internal/pkg/testutil"
	"github.com/crrelabs/HireAnyPro/views"
)

const (
	testOwnerSecret   = "owner-secret"
	testWebhookSecret = "whsec_test"
)

// recordingNotifier satisfies the claim and billing notifier interfaces.
type recordingNotifier struct {
	mu     sync.Mutex
	tokens []string
}

func (n *recordingNotifier) SendClaimVerification(_ context.Context, _, _, token, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tokens = append(n.tokens, token)
}

func (n *recordingNotifier) NotifyNewClaim(context.Context, string, string, string)        {}
func (n *recordingNotifier) NotifyUpgrade(context.Context, string, string, string)         {}
func (n *recordingNotifier) NotifyUnlinkedPayment(context.Context, string, string, string) {}

func (n *recordingNotifier) lastToken(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.tokens)
	return n.tokens[len(n.tokens)-1]
}

type fakeCheckout struct {
	got billing.CheckoutRequest
	err error
}

func (f *fakeCheckout) CreateSession(_ context.Context, req billing.CheckoutRequest) (*billing.CheckoutSession, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &billing.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/c/cs_1"}, nil
}

type testServer struct {
	app      *fiber.App
	db       *gorm.DB
	notifier *recordingNotifier
	checkout *fakeCheckout
}

// newTestServer mounts every controller on a fresh in-memory database without
// rate limits, CSRF or operator auth.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	notifier := &recordingNotifier{}
	profiles := identity.NewResolver(db)
	repos := repository.NewRepositories(db)

	claimCfg := claims.Config{
		HasVerificationColumns: true,
		OwnerTokenSecret:       testOwnerSecret,
	}
	workflow := claims.NewWorkflow(db, profiles, nil, notifier, claimCfg)
	gate := claims.NewGate(db, profiles, notifier, claimCfg)
	journal := billing.NewServiceFromDB(db)
	processor := billing.NewWebhookProcessor(journal, billing.NewReconciler(db, profiles, journal, notifier))
	checkout := &fakeCheckout{}

	cc := NewClaimController(workflow, gate, repos.Listing, "")
	bc := NewBillingController(checkout, processor, testWebhookSecret, false)
	dc := NewDirectoryController(repos, nil, nil)
	blog := NewBlogController(repos.Blog)
	admin := NewAdminController(journal, processor, workflow, repos.Throttle, "ratelimit:")

	app := fiber.New(fiber.Config{Views: views.NewEngine()})
	app.Post("/api/claim", cc.HandleClaim)
	app.Post("/api/claim/resend", cc.HandleResend)
	app.Get("/api/verify-claim", cc.HandleVerifyClaim)
	app.Post("/api/verify-claim", cc.HandleVerifyClaim)
	app.Get("/claim/:listingId", cc.HandleClaimPage)
	app.Post("/claim/:listingId", cc.HandleClaimPageSubmit)
	app.Get("/claim/:listingId/pending", cc.HandleClaimPending)
	app.Get("/verify-claim", cc.HandleVerifyClaimPage)
	app.Post("/api/checkout", bc.HandleCheckout)
	app.Post("/webhooks/stripe", bc.HandleStripeWebhook)
	app.Get("/api/listings", dc.HandleListings)
	app.Get("/api/listings/:slug", dc.HandleListing)
	app.Get("/api/listings/:slug/reviews", dc.HandleListingReviews)
	app.Get("/api/categories", dc.HandleCategories)
	app.Post("/api/review", dc.HandleReview)
	app.Post("/api/listing/update", middleware.RequireOwnerToken(testOwnerSecret), dc.HandleListingUpdate)
	app.Get("/api/blog", blog.HandleBlogList)
	app.Get("/api/blog/categories", blog.HandleBlogCategories)
	app.Get("/api/blog/:slug", blog.HandleBlogPost)
	app.Get("/admin/webhooks", admin.HandleWebhooks)
	app.Post("/admin/webhooks/:id/replay", admin.HandleWebhookReplay)
	app.Post("/admin/claims/resend", admin.HandleClaimResend)

	return &testServer{app: app, db: db, notifier: notifier, checkout: checkout}
}

func (s *testServer) do(t *testing.T, req *http.Request) (*http.Response, map[string]interface{}, string) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp, body, string(raw)
}

func (s *testServer) postJSON(t *testing.T, path string, payload interface{}, headers ...string) (*http.Response, map[string]interface{}) {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(b)))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, body, _ := s.do(t, req)
	return resp, body
}

func (s *testServer) get(t *testing.T, path string) (*http.Response, map[string]interface{}, string) {
	t.Helper()
	return s.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}
