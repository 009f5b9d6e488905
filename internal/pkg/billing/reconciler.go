package billing

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/models"
	"github.com/crrelabs/HireAnyPro/internal/pkg/apperror"
	"github.com/crrelabs/HireAnyPro/internal/pkg/identity"
)

// Recovered outcomes. The event is accepted but the domain is left unchanged;
// the message is stored on the journal entry.
var (
	ErrMissingListingLink = errors.New("missing_listing_link")
	ErrMissingEmail       = errors.New("missing_email")
)

// IsRecovered reports whether err is an accepted no-op rather than a failure.
func IsRecovered(err error) bool {
	return errors.Is(err, ErrMissingListingLink) || errors.Is(err, ErrMissingEmail)
}

// Notifier receives operator notices about payments.
type Notifier interface {
	NotifyUpgrade(ctx context.Context, listingID, email, plan string)
	NotifyUnlinkedPayment(ctx context.Context, email, plan, subscriptionID string)
}

// Reconciler keeps subscriptions and listing tiers in sync with payment events.
// Every write is an upsert keyed by provider subscription id or by
// (profile, listing), so replays and duplicates are harmless.
type Reconciler struct {
	db        *gorm.DB
	profiles  *identity.Resolver
	journal   *Service
	notifier  Notifier
	resolvers []ListingResolver
}

func NewReconciler(db *gorm.DB, profiles *identity.Resolver, journal *Service, notifier Notifier, resolvers ...ListingResolver) *Reconciler {
	if len(resolvers) == 0 {
		resolvers = DefaultListingResolvers(db)
	}
	return &Reconciler{db: db, profiles: profiles, journal: journal, notifier: notifier, resolvers: resolvers}
}

// OnPaymentEvent applies one parsed event.
func (r *Reconciler) OnPaymentEvent(ctx context.Context, ev *PaymentEvent) (ReconcileResult, error) {
	switch ev.Kind {
	case KindCheckoutCompleted:
		return r.onCheckoutCompleted(ctx, ev)
	case KindSubscriptionCanceled:
		return r.onSubscriptionCanceled(ctx, ev)
	default:
		return ReconcileResult{Action: ActionNoop}, nil
	}
}

func (r *Reconciler) onCheckoutCompleted(ctx context.Context, ev *PaymentEvent) (ReconcileResult, error) {
	email := identity.NormalizeEmail(ev.Email)
	if email == "" {
		log.Warnf("[Billing] checkout event %s has no email, nothing to reconcile", ev.EventID)
		return ReconcileResult{Action: ActionNoop}, ErrMissingEmail
	}
	plan := normalizePaidPlan(ev.Plan)

	profile, err := r.profiles.ResolveProfileWithCustomer(ctx, email, ev.CustomerID)
	if err != nil {
		return ReconcileResult{}, apperror.MissingProfile(err, "failed to resolve profile for payment")
	}

	// A tracked subscription keeps its listing, so replays land where the
	// first delivery did even after the fallbacks stop matching.
	listingID, err := r.trackedListing(ctx, ev.SubscriptionID)
	if err != nil {
		return ReconcileResult{}, err
	}
	if listingID == "" {
		listingID, err = r.ResolveListing(ctx, ev.ListingID, profile)
		if err != nil {
			return ReconcileResult{}, err
		}
	}
	if listingID == "" {
		log.Warnf("[Billing] MissingListingLink: paid %s checkout by %s (subscription %q) has no resolvable listing", plan, email, ev.SubscriptionID)
		r.notifier.NotifyUnlinkedPayment(ctx, email, plan, ev.SubscriptionID)
		return ReconcileResult{Action: ActionNoop, ProfileID: profile.ID, Plan: plan}, ErrMissingListingLink
	}

	status := models.SubscriptionStatusActive
	action := ActionUpgraded
	if r.journal != nil && ev.SubscriptionID != "" {
		canceled, err := r.journal.WasCanceled(ctx, ev.SubscriptionID)
		if err != nil {
			return ReconcileResult{}, apperror.Persistence(err, "failed to check journal")
		}
		if canceled {
			log.Infof("[Billing] subscription %s was canceled before its checkout arrived, landing as canceled", ev.SubscriptionID)
			status = models.SubscriptionStatusCanceled
			plan = models.TierFree
			action = ActionLateCancel
		}
	}

	var tier string
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := upsertSubscription(tx, profile, listingID, plan, status, ev)
		if err != nil {
			return err
		}
		listingID = sub.ListingID
		tier, err = projectListingTier(tx, listingID, profile.ID, true)
		return err
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	log.Infof("[Billing] listing %s now %s (profile %s, subscription %q)", listingID, tier, profile.ID, ev.SubscriptionID)
	if action == ActionUpgraded && plan != models.TierFree {
		r.notifier.NotifyUpgrade(ctx, listingID, email, plan)
	}
	return ReconcileResult{Action: action, ProfileID: profile.ID, ListingID: listingID, Plan: plan}, nil
}

func (r *Reconciler) onSubscriptionCanceled(ctx context.Context, ev *PaymentEvent) (ReconcileResult, error) {
	if ev.SubscriptionID == "" {
		return ReconcileResult{Action: ActionNoop}, nil
	}

	var sub models.Subscription
	err := r.db.WithContext(ctx).Where("stripe_subscription_id = ?", ev.SubscriptionID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Infof("[Billing] cancellation for untracked subscription %s ignored", ev.SubscriptionID)
		return ReconcileResult{Action: ActionNoop}, nil
	}
	if err != nil {
		return ReconcileResult{}, apperror.Persistence(err, "failed to load subscription")
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Subscription{}).Where("id = ?", sub.ID).Updates(map[string]interface{}{
			"status": models.SubscriptionStatusCanceled,
			"plan":   models.TierFree,
		}).Error; err != nil {
			return apperror.Persistence(err, "failed to cancel subscription")
		}
		_, err := projectListingTier(tx, sub.ListingID, "", false)
		return err
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	log.Infof("[Billing] subscription %s canceled, listing %s back to free", ev.SubscriptionID, sub.ListingID)
	return ReconcileResult{Action: ActionCanceled, ProfileID: sub.ProfileID, ListingID: sub.ListingID, Plan: models.TierFree}, nil
}

// trackedListing returns the listing of the subscription with the given
// provider id, or "" when none is stored.
func (r *Reconciler) trackedListing(ctx context.Context, subscriptionID string) (string, error) {
	if subscriptionID == "" {
		return "", nil
	}
	var sub models.Subscription
	err := r.db.WithContext(ctx).Where("stripe_subscription_id = ?", subscriptionID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperror.Persistence(err, "failed to load subscription")
	}
	return sub.ListingID, nil
}

// ResolveListing uses the explicit listing id when it names an existing
// listing and otherwise walks the resolver chain. "" means unresolved.
func (r *Reconciler) ResolveListing(ctx context.Context, explicitID string, profile *models.Profile) (string, error) {
	if explicitID != "" {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", explicitID).Count(&count).Error; err != nil {
			return "", apperror.Persistence(err, "failed to load listing")
		}
		if count > 0 {
			return explicitID, nil
		}
		log.Warnf("[Billing] checkout metadata names unknown listing %s, falling back", explicitID)
	}

	for _, resolve := range r.resolvers {
		id, ok, err := resolve(ctx, profile)
		if err != nil {
			return "", apperror.Persistence(err, "failed to resolve listing")
		}
		if ok {
			return id, nil
		}
	}
	return "", nil
}

// upsertSubscription updates the row matching the provider subscription id or
// (profile, listing), inserting one only when neither exists.
func upsertSubscription(tx *gorm.DB, profile *models.Profile, listingID, plan, status string, ev *PaymentEvent) (*models.Subscription, error) {
	var sub models.Subscription
	found := false

	if ev.SubscriptionID != "" {
		err := tx.Where("stripe_subscription_id = ?", ev.SubscriptionID).First(&sub).Error
		if err == nil {
			found = true
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Persistence(err, "failed to load subscription")
		}
	}
	if !found {
		err := tx.Where("profile_id = ? AND listing_id = ?", profile.ID, listingID).First(&sub).Error
		if err == nil {
			found = true
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Persistence(err, "failed to load subscription")
		}
	}

	if found {
		updates := map[string]interface{}{"plan": plan, "status": status}
		if ev.CustomerID != "" {
			updates["stripe_customer_id"] = ev.CustomerID
		}
		if ev.SubscriptionID != "" {
			updates["stripe_subscription_id"] = ev.SubscriptionID
		}
		if err := tx.Model(&models.Subscription{}).Where("id = ?", sub.ID).Updates(updates).Error; err != nil {
			return nil, apperror.Persistence(err, "failed to update subscription")
		}
		return &sub, nil
	}

	sub = models.Subscription{
		ProfileID:        profile.ID,
		ListingID:        listingID,
		Plan:             plan,
		Status:           status,
		StripeCustomerID: ev.CustomerID,
	}
	if ev.SubscriptionID != "" {
		id := ev.SubscriptionID
		sub.StripeSubscriptionID = &id
	}
	if err := tx.Create(&sub).Error; err != nil {
		return nil, apperror.Persistence(err, "failed to create subscription")
	}
	return &sub, nil
}

// projectListingTier writes the best entitling plan of the listing's
// subscriptions to listings.tier. With claim set it also marks the listing
// claimed and assigns ownerID when the listing has no owner yet.
func projectListingTier(tx *gorm.DB, listingID, ownerID string, claim bool) (string, error) {
	var subs []models.Subscription
	if err := tx.Where("listing_id = ?", listingID).Find(&subs).Error; err != nil {
		return "", apperror.Persistence(err, "failed to load subscriptions")
	}
	tier := bestPlan(subs)

	updates := map[string]interface{}{"tier": tier}
	if claim {
		updates["claimed"] = true
	}
	if err := tx.Model(&models.Listing{}).Where("id = ?", listingID).Updates(updates).Error; err != nil {
		return "", apperror.Persistence(err, "failed to update listing tier")
	}
	if claim && ownerID != "" {
		if err := tx.Model(&models.Listing{}).
			Where("id = ? AND owner_id IS NULL", listingID).
			Update("owner_id", ownerID).Error; err != nil {
			return "", apperror.Persistence(err, "failed to set listing owner")
		}
	}
	return tier, nil
}
