package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crrelabs/HireAnyPro/app/models"
	"github.com/crrelabs/HireAnyPro/internal/pkg/security"
	"github.com/crrelabs/HireAnyPro/internal/pkg/testutil"
)

// claimListing runs the claim flow and returns the issued owner token.
func (s *testServer) claimListing(t *testing.T, listingID, email string) string {
	t.Helper()
	resp, _ := s.postJSON(t, "/api/claim", map[string]string{"listingId": listingID, "email": email})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp, body := s.postJSON(t, "/api/verify-claim", map[string]string{"token": s.notifier.lastToken(t), "listingId": listingID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["ownerToken"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestListingsHideContactForFreeTier(t *testing.T) {
	s := newTestServer(t)
	free := testutil.CreateListing(t, s.db, "free-co")
	pro := testutil.CreateListing(t, s.db, "pro-co")
	require.NoError(t, s.db.Model(pro).Update("tier", models.TierPro).Error)

	resp, body, _ := s.get(t, "/api/listings")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["total"])

	listings := body["listings"].([]interface{})
	require.Len(t, listings, 2)
	first := listings[0].(map[string]interface{})
	second := listings[1].(map[string]interface{})
	assert.Equal(t, pro.ID, first["id"], "paid tiers rank first")
	assert.Equal(t, true, first["contact_visible"])
	assert.NotNil(t, first["contact"])
	assert.Equal(t, free.ID, second["id"])
	assert.Equal(t, false, second["contact_visible"])
	assert.Nil(t, second["contact"])
	assert.NotContains(t, second, "phone")
}

func TestListingBySlug(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateListing(t, s.db, "acme")

	resp, body, _ := s.get(t, "/api/listings/acme")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listing := body["listing"].(map[string]interface{})
	assert.Equal(t, "acme", listing["slug"])

	resp, _, _ = s.get(t, "/api/listings/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategories(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.db.Create(&models.Category{Name: "Plumbing", Slug: "plumbing"}).Error)

	resp, body, _ := s.get(t, "/api/categories")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["categories"], 1)
}

func TestReviewRecomputesRating(t *testing.T) {
	s := newTestServer(t)
	l := testutil.CreateListing(t, s.db, "acme")

	for _, rating := range []int{5, 4, 4} {
		resp, body := s.postJSON(t, "/api/review", map[string]interface{}{
			"listingId": l.ID, "authorName": "Pat", "rating": rating, "comment": "Good work",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, true, body["success"])
	}

	got := testutil.ReloadListing(t, s.db, l.ID)
	assert.Equal(t, 3, got.ReviewCount)
	assert.InDelta(t, 4.3, got.Rating, 0.001)

	resp, body, _ := s.get(t, "/api/listings/acme/reviews")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["reviews"], 3)
}

func TestReviewHoneypotIsSilent(t *testing.T) {
	s := newTestServer(t)
	l := testutil.CreateListing(t, s.db, "acme")

	resp, _ := s.postJSON(t, "/api/review", map[string]interface{}{
		"listingId": l.ID, "authorName": "Bot", "rating": 5, "website": "http://spam.example",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var count int64
	require.NoError(t, s.db.Model(&models.Review{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestReviewValidation(t *testing.T) {
	s := newTestServer(t)
	l := testutil.CreateListing(t, s.db, "acme")

	resp, _ := s.postJSON(t, "/api/review", map[string]interface{}{"listingId": l.ID, "authorName": "Pat", "rating": 6})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.postJSON(t, "/api/review", map[string]interface{}{"listingId": "missing", "authorName": "Pat", "rating": 3})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListingUpdateByOwner(t *testing.T) {
	s := newTestServer(t)
	l := testutil.CreateListing(t, s.db, "acme")
	token := s.claimListing(t, l.ID, "owner@acme.com")

	resp, body := s.postJSON(t, "/api/listing/update", map[string]string{"name": "Acme Plumbing", "city": "Orlando"},
		"Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	got := testutil.ReloadListing(t, s.db, l.ID)
	assert.Equal(t, "Acme Plumbing", got.Name)
	assert.Equal(t, "Orlando", got.City)
	assert.Equal(t, "813-555-0100", got.Phone, "untouched fields are kept")
}

func TestListingUpdateRejections(t *testing.T) {
	s := newTestServer(t)
	l := testutil.CreateListing(t, s.db, "acme")
	token := s.claimListing(t, l.ID, "owner@acme.com")

	resp, _ := s.postJSON(t, "/api/listing/update", map[string]string{"name": "Acme"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.postJSON(t, "/api/listing/update", map[string]string{"name": "Acme"}, "Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.postJSON(t, "/api/listing/update", map[string]string{}, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.postJSON(t, "/api/listing/update", map[string]string{"category_id": "nope"}, "X-Owner-Token", token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.NoError(t, s.db.Model(&models.Subscription{}).Where("listing_id = ?", l.ID).
		Update("status", models.SubscriptionStatusCanceled).Error)
	resp, body := s.postJSON(t, "/api/listing/update", map[string]string{"name": "Acme"}, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "No active subscription for this listing", body["message"])
}

func TestListingUpdateRequiresOwnership(t *testing.T) {
	s := newTestServer(t)
	l := testutil.CreateListing(t, s.db, "acme")
	s.claimListing(t, l.ID, "owner@acme.com")

	forged, err := security.GenerateOwnerToken("someone-else", l.ID, time.Hour, testOwnerSecret)
	require.NoError(t, err)
	resp, _ := s.postJSON(t, "/api/listing/update", map[string]string{"name": "Mine"}, "Authorization", "Bearer "+forged)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Listing acme", testutil.ReloadListing(t, s.db, l.ID).Name)
}
