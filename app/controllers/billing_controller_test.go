package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/crrelabs/HireAnyPro/app/models"
	"github.com/crrelabs/HireAnyPro/internal/pkg/apperror"
	"github.com/crrelabs/HireAnyPro/internal/pkg/billing"
	"github.com/crrelabs/HireAnyPro/internal/pkg/testutil"
)

func (s *testServer) webhook(t *testing.T, payload string, sign bool) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if sign {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload:   []byte(payload),
			Secret:    testWebhookSecret,
			Timestamp: time.Now(),
		})
		req.Header.Set("Stripe-Signature", signed.Header)
	}
	resp, body, _ := s.do(t, req)
	return resp, body
}

func checkoutEvent(id, listingID, email string) string {
	return fmt.Sprintf(`{"id":%q,"type":"checkout.session.completed","data":{"object":{"customer":"cus_1","subscription":"sub_1","customer_email":%q,"metadata":{"listingId":%q,"plan":"pro"}}}}`,
		id, email, listingID)
}

func TestStripeWebhookUpgradesListing(t *testing.T) {
	s := newTestServer(t)
	l := testutil.CreateListing(t, s.db, "acme")
	payload := checkoutEvent("evt_1", l.ID, "a@x.com")

	resp, body := s.webhook(t, payload, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "upgraded", body["action"])
	assert.Equal(t, "pro", testutil.ReloadListing(t, s.db, l.ID).Tier)

	resp, body = s.webhook(t, payload, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["duplicate"])
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	s := newTestServer(t)
	l := testutil.CreateListing(t, s.db, "acme")

	resp, body := s.webhook(t, checkoutEvent("evt_1", l.ID, "a@x.com"), false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_signature", body["error"])

	var count int64
	require.NoError(t, s.db.Model(&models.BillingWebhookEvent{}).Count(&count).Error)
	assert.Zero(t, count, "unsigned deliveries are not journaled")
}

func TestStripeWebhookAcceptsUnlinkedPayment(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.webhook(t, checkoutEvent("evt_9", "", "nobody@x.com"), true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "missing_listing_link", body["warning"])
}

func TestStripeWebhookInvalidPayload(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.webhook(t, `not json`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckout(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.postJSON(t, "/api/checkout", map[string]string{"plan": "Featured", "listingId": "l-1", "email": "A@x.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_1", body["url"])
	assert.Equal(t, billing.CheckoutRequest{Plan: "featured", ListingID: "l-1", Email: "a@x.com"}, s.checkout.got)

	resp, _ = s.postJSON(t, "/api/checkout", map[string]string{"plan": "free", "email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckoutTransportError(t *testing.T) {
	s := newTestServer(t)
	s.checkout.err = apperror.Transport(errors.New("boom"), "failed to create checkout session")

	resp, body := s.postJSON(t, "/api/checkout", map[string]string{"plan": "pro", "email": "a@x.com"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "failed to create checkout session", body["message"])
}
