package billing

import (
	"strings"

	"github.com/crrelabs/HireAnyPro/app/models"
	"github.com/crrelabs/HireAnyPro/internal/pkg/entitlements"
)

func normalizePlan(plan string) string {
	return string(entitlements.NormalizeTier(plan))
}

// normalizePaidPlan defaults a missing plan to pro. Unknown values are free.
func normalizePaidPlan(plan string) string {
	if strings.TrimSpace(plan) == "" {
		return models.TierPro
	}
	return normalizePlan(plan)
}

func planRank(plan string) int {
	return entitlements.Rank(entitlements.NormalizeTier(plan))
}

func isEntitlingStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case models.SubscriptionStatusActive, "trialing", "past_due":
		return true
	default:
		return false
	}
}

// bestPlan returns the highest ranked plan among entitling subscriptions.
func bestPlan(subs []models.Subscription) string {
	best := models.TierFree
	for _, sub := range subs {
		if !isEntitlingStatus(sub.Status) {
			continue
		}
		candidate := normalizePlan(sub.Plan)
		if planRank(candidate) > planRank(best) {
			best = candidate
		}
	}
	return best
}
