package entitlements

import (
	"strings"

	"github.com/crrelabs/HireAnyPro/app/models"
)

type Tier string

const (
	TierFree     Tier = models.TierFree
	TierPro      Tier = models.TierPro
	TierFeatured Tier = models.TierFeatured
)

// NormalizeTier maps unknown values to free.
func NormalizeTier(tier string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(tier))) {
	case TierFeatured:
		return TierFeatured
	case TierPro:
		return TierPro
	default:
		return TierFree
	}
}

// Rank orders tiers for search placement: featured > pro > free.
func Rank(tier Tier) int {
	switch tier {
	case TierFeatured:
		return 2
	case TierPro:
		return 1
	default:
		return 0
	}
}

// IsPaid reports whether the plan grants paid benefits.
func IsPaid(plan string) bool {
	return NormalizeTier(plan) != TierFree
}

// EffectiveTier returns the visible tier of a listing.
func EffectiveTier(l *models.Listing) Tier {
	if l == nil {
		return TierFree
	}
	return NormalizeTier(l.Tier)
}

// IsContactVisible reports whether phone, email and website are disclosed.
func IsContactVisible(l *models.Listing) bool {
	return EffectiveTier(l) != TierFree
}

// Contact holds the disclosable contact fields of a listing.
type Contact struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
}

// ListingView is the public shape of a listing after projection.
type ListingView struct {
	ID             string   `json:"id"`
	Slug           string   `json:"slug"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	CategoryID     *string  `json:"category_id,omitempty"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	Zip            string   `json:"zip"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	Hours          string   `json:"hours,omitempty"`
	Rating         float64  `json:"rating"`
	ReviewCount    int      `json:"review_count"`
	Claimed        bool     `json:"claimed"`
	Tier           Tier     `json:"tier"`
	ContactVisible bool     `json:"contact_visible"`
	Contact        *Contact `json:"contact,omitempty"`
}

// Project builds the public view, hiding contact fields for free listings.
func Project(l *models.Listing) ListingView {
	v := ListingView{
		ID:          l.ID,
		Slug:        l.Slug,
		Name:        l.Name,
		Description: l.Description,
		CategoryID:  l.CategoryID,
		Address:     l.Address,
		City:        l.City,
		State:       l.State,
		Zip:         l.Zip,
		Lat:         l.Lat,
		Lng:         l.Lng,
		Hours:       l.Hours,
		Rating:      l.Rating,
		ReviewCount: l.ReviewCount,
		Claimed:     l.Claimed,
		Tier:        EffectiveTier(l),
	}
	if IsContactVisible(l) {
		v.ContactVisible = true
		v.Contact = &Contact{Phone: l.Phone, Email: l.Email, Website: l.Website}
	}
	return v
}

// ProjectAll applies Project to each listing.
func ProjectAll(listings []models.Listing) []ListingView {
	views := make([]ListingView, 0, len(listings))
	for i := range listings {
		views = append(views, Project(&listings[i]))
	}
	return views
}
