package entitlements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crrelabs/HireAnyPro/app/models"
)

func TestNormalizeTier(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
	}{
		{"free", TierFree},
		{"PRO", TierPro},
		{" featured ", TierFeatured},
		{"", TierFree},
		{"platinum", TierFree},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTier(tt.in), tt.in)
	}
}

func TestRankOrdersTiers(t *testing.T) {
	assert.Greater(t, Rank(TierFeatured), Rank(TierPro))
	assert.Greater(t, Rank(TierPro), Rank(TierFree))
}

func TestContactVisibility(t *testing.T) {
	assert.False(t, IsContactVisible(nil))
	assert.False(t, IsContactVisible(&models.Listing{Tier: "free"}))
	assert.True(t, IsContactVisible(&models.Listing{Tier: "pro"}))
	assert.True(t, IsContactVisible(&models.Listing{Tier: "featured"}))
}

func TestProjectHidesContactForFreeListings(t *testing.T) {
	l := &models.Listing{ID: "l1", Slug: "acme", Tier: "free", Phone: "555", Email: "a@acme.com", Website: "acme.com"}

	v := Project(l)
	assert.False(t, v.ContactVisible)
	assert.Nil(t, v.Contact)

	l.Tier = "pro"
	v = Project(l)
	assert.True(t, v.ContactVisible)
	require.NotNil(t, v.Contact)
	assert.Equal(t, "555", v.Contact.Phone)
	assert.Equal(t, "a@acme.com", v.Contact.Email)
}

func TestIsPaid(t *testing.T) {
	assert.False(t, IsPaid("free"))
	assert.False(t, IsPaid("unknown"))
	assert.True(t, IsPaid("pro"))
	assert.True(t, IsPaid("featured"))
}
