package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crrelabs/HireAnyPro/internal/pkg/apperror"
)

var testPrices = map[string]string{"pro": "price_pro", "featured": "price_featured"}

func TestCheckoutCreateSession(t *testing.T) {
	var gotForm map[string]string
	var gotAuth, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("Idempotency-Key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_1","url":"https://checkout.stripe.com/c/cs_1"}`))
	}))
	defer srv.Close()

	c := NewCheckoutClient("sk_test", srv.URL, "https://hireanypro.com", testPrices)
	session, err := c.CreateSession(context.Background(), CheckoutRequest{Plan: "Featured", ListingID: "l-1", Email: " A@X.com "})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_1", session.URL)

	assert.Equal(t, "Bearer sk_test", gotAuth)
	assert.NotEmpty(t, gotKey)
	assert.Equal(t, "subscription", gotForm["mode"])
	assert.Equal(t, "price_featured", gotForm["line_items[0][price]"])
	assert.Equal(t, "1", gotForm["line_items[0][quantity]"])
	assert.Equal(t, "a@x.com", gotForm["customer_email"])
	assert.Equal(t, "l-1", gotForm["metadata[listingId]"])
	assert.Equal(t, "featured", gotForm["metadata[plan]"])
	assert.Equal(t, "l-1", gotForm["subscription_data[metadata][listingId]"])
	assert.Equal(t, "https://hireanypro.com/dashboard?session_id={CHECKOUT_SESSION_ID}", gotForm["success_url"])
	assert.Equal(t, "https://hireanypro.com/pricing", gotForm["cancel_url"])
}

func TestCheckoutIdempotencyKeyIsStableWithinBucket(t *testing.T) {
	c := NewCheckoutClient("sk_test", "", "", testPrices)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	first := c.idempotencyKey("a@x.com", "l-1", "pro")
	c.now = func() time.Time { return base.Add(5 * time.Minute) }
	assert.Equal(t, first, c.idempotencyKey("a@x.com", "l-1", "pro"))
	assert.NotEqual(t, first, c.idempotencyKey("a@x.com", "l-1", "featured"))
}

func TestCheckoutRejectsInvalidInput(t *testing.T) {
	c := NewCheckoutClient("sk_test", "", "", testPrices)

	_, err := c.CreateSession(context.Background(), CheckoutRequest{Plan: "free", Email: "a@x.com"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = c.CreateSession(context.Background(), CheckoutRequest{Plan: "pro"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestCheckoutUnconfigured(t *testing.T) {
	c := NewCheckoutClient("", "", "", testPrices)
	_, err := c.CreateSession(context.Background(), CheckoutRequest{Plan: "pro", Email: "a@x.com"})
	assert.ErrorIs(t, err, apperror.ErrTransport)
	assert.ErrorIs(t, err, ErrCheckoutNotConfigured)
}

func TestCheckoutStripeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such price"}}`))
	}))
	defer srv.Close()

	c := NewCheckoutClient("sk_test", srv.URL, "", testPrices)
	_, err := c.CreateSession(context.Background(), CheckoutRequest{Plan: "pro", Email: "a@x.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrTransport)
	assert.Contains(t, err.Error(), "No such price")
}
