package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/models"
	"github.com/crrelabs/HireAnyPro/internal/pkg/testutil"
)

func seedListing(t *testing.T, db *gorm.DB, l models.Listing) *models.Listing {
	t.Helper()
	require.NoError(t, db.Create(&l).Error)
	return &l
}

func TestListingSearchOrdersByTierThenRating(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewListingRepository(db)

	seedListing(t, db, models.Listing{Name: "Bravo Plumbing", City: "Tampa", Rating: 4.9, Tier: models.TierFree})
	seedListing(t, db, models.Listing{Name: "Alpha Plumbing", City: "Tampa", Rating: 3.0, Tier: models.TierPro})
	seedListing(t, db, models.Listing{Name: "Zulu Plumbing", City: "Tampa", Rating: 2.0, Tier: models.TierFeatured})
	seedListing(t, db, models.Listing{Name: "Charlie Plumbing", City: "Tampa", Rating: 4.9, Tier: models.TierFree})

	listings, total, err := repo.Search(ListingFilter{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)

	names := make([]string, 0, len(listings))
	for _, l := range listings {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"Zulu Plumbing", "Alpha Plumbing", "Bravo Plumbing", "Charlie Plumbing"}, names)
}

func TestListingSearchFilters(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewListingRepository(db)

	roofing := models.Category{Name: "Roofing"}
	require.NoError(t, db.Create(&roofing).Error)

	seedListing(t, db, models.Listing{Name: "Sun Roofers", City: "Tampa", Rating: 4.5, CategoryID: &roofing.ID})
	seedListing(t, db, models.Listing{Name: "Bay Roofers", City: "Orlando", Rating: 4.8, CategoryID: &roofing.ID})
	seedListing(t, db, models.Listing{Name: "Quick Locks", City: "Tampa", Rating: 3.1, Description: "emergency roof tarps too"})

	tests := []struct {
		name   string
		filter ListingFilter
		want   int64
	}{
		{"query matches name or description", ListingFilter{Query: "ROOF"}, 3},
		{"category slug", ListingFilter{CategorySlug: "roofing"}, 2},
		{"city is case insensitive", ListingFilter{City: "tampa"}, 2},
		{"min rating", ListingFilter{MinRating: 4.6}, 1},
		{"combined", ListingFilter{CategorySlug: "roofing", City: "Tampa"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.Limit = 10
			_, total, err := repo.Search(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
		})
	}
}

func TestListingSearchPaginates(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewListingRepository(db)
	for _, slug := range []string{"a", "b", "c"} {
		testutil.CreateListing(t, db, slug)
	}

	page, total, err := repo.Search(ListingFilter{Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 1)
}

func TestListingUpdateFields(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewListingRepository(db)
	l := testutil.CreateListing(t, db, "acme")

	require.NoError(t, repo.UpdateFields(l.ID, map[string]interface{}{"phone": "555", "hours": "9-5"}))
	got, err := repo.GetBySlug("acme")
	require.NoError(t, err)
	assert.Equal(t, "555", got.Phone)
	assert.Equal(t, "9-5", got.Hours)
	assert.Equal(t, l.Name, got.Name)

	assert.ErrorIs(t, repo.UpdateFields("missing", map[string]interface{}{"phone": "1"}), gorm.ErrRecordNotFound)
}

func TestReviewCreateRecomputesRating(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewReviewRepository(db)
	l := testutil.CreateListing(t, db, "acme")

	for _, rating := range []int{5, 4, 4} {
		require.NoError(t, repo.Create(&models.Review{ListingID: l.ID, AuthorName: "Pat", Rating: rating}))
	}

	listing := testutil.ReloadListing(t, db, l.ID)
	assert.Equal(t, 3, listing.ReviewCount)
	assert.InDelta(t, 4.3, listing.Rating, 0.001)

	reviews, err := repo.GetByListingID(l.ID, 2)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestReviewCreateUnknownListing(t *testing.T) {
	db := testutil.NewDB(t)
	err := NewReviewRepository(db).Create(&models.Review{ListingID: "missing", AuthorName: "Pat", Rating: 5})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Review{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBlogPublishedAndRelated(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewBlogRepository(db)

	now := time.Now()
	at := func(d time.Duration) *time.Time { v := now.Add(-d); return &v }
	posts := []models.BlogPost{
		{Title: "Hiring a roofer", Content: "x", Category: "roofing", Published: true, PublishedAt: at(time.Hour)},
		{Title: "Roof maintenance", Content: "x", Category: "roofing", Published: true, PublishedAt: at(2 * time.Hour)},
		{Title: "Roof draft", Content: "x", Category: "roofing", Published: false},
		{Title: "Plumbing basics", Content: "x", Category: "plumbing", Published: true, PublishedAt: at(3 * time.Hour)},
	}
	for i := range posts {
		require.NoError(t, db.Create(&posts[i]).Error)
	}

	all, total, err := repo.GetPublished("", 0, 9)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, "hiring-a-roofer", all[0].Slug)

	roofing, total, err := repo.GetPublished("roofing", 0, 9)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, roofing, 2)

	_, err = repo.GetPublishedBySlug("roof-draft")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	post, err := repo.GetPublishedBySlug("hiring-a-roofer")
	require.NoError(t, err)
	related, err := repo.GetRelated(post, 3)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "roof-maintenance", related[0].Slug)

	categories, err := repo.GetCategories()
	require.NoError(t, err)
	assert.Equal(t, []string{"plumbing", "roofing"}, categories)
}

func TestSubscriptionHasActive(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSubscriptionRepository(db)
	l := testutil.CreateListing(t, db, "acme")
	p := models.Profile{Email: "a@x.com"}
	require.NoError(t, db.Create(&p).Error)

	ok, err := repo.HasActive(p.ID, l.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Create(&models.Subscription{ProfileID: p.ID, ListingID: l.ID, Plan: "free", Status: "active"}).Error)
	ok, err = repo.HasActive(p.ID, l.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
