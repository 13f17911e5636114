package cron

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"go.uber.org/multierr"

	"github.com/easyukapp/easyuk-backend/internal/marketplace"
	"github.com/easyukapp/easyuk-backend/pkg/db/models"
	"github.com/easyukapp/easyuk-backend/pkg/logger"
)

const defaultReconcileLimit = 100

// activeListingsReader loads active listings that carry a Stripe subscription.
type activeListingsReader interface {
	ListActiveWithSubscription(ctx context.Context, limit int) ([]models.Listing, error)
}

// paymentApplier applies a billing outcome to a listing.
type paymentApplier interface {
	HandlePaymentResult(ctx context.Context, result marketplace.PaymentResult) error
}

// SubscriptionReconcileJobParams configures the subscription sync cron job.
type SubscriptionReconcileJobParams struct {
	Logger      *logger.Logger
	Listings    activeListingsReader
	Stripe      StripeSubscriptionClient
	Marketplace paymentApplier
	Limit       int
}

// NewSubscriptionReconcileJob builds the job that downgrades listings whose
// Stripe subscription has lapsed without a webhook being delivered.
func NewSubscriptionReconcileJob(params SubscriptionReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Listings == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Stripe == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if params.Marketplace == nil {
		return nil, fmt.Errorf("marketplace service required")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultReconcileLimit
	}
	return &subscriptionReconcileJob{
		logg:        params.Logger,
		listings:    params.Listings,
		stripe:      params.Stripe,
		marketplace: params.Marketplace,
		limit:       limit,
	}, nil
}

type subscriptionReconcileJob struct {
	logg        *logger.Logger
	listings    activeListingsReader
	stripe      StripeSubscriptionClient
	marketplace paymentApplier
	limit       int
}

func (j *subscriptionReconcileJob) Name() string { return "subscription-reconcile" }

func (j *subscriptionReconcileJob) Run(ctx context.Context) error {
	snapshot, err := j.listings.ListActiveWithSubscription(ctx, j.limit)
	if err != nil {
		return fmt.Errorf("list active listings: %w", err)
	}
	var errs error
	lapsed := 0
	for i := range snapshot {
		downgraded, err := j.reconcileListing(ctx, &snapshot[i])
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if downgraded {
			lapsed++
		}
	}
	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(snapshot),
		"lapsed":     lapsed,
	})
	j.logg.Info(reportCtx, "subscription reconcile loop complete")
	return errs
}

func (j *subscriptionReconcileJob) reconcileListing(ctx context.Context, listing *models.Listing) (bool, error) {
	logCtx := j.logg.WithListingID(ctx, listing.ID.String())
	if listing.StripeSubscriptionID == nil || strings.TrimSpace(*listing.StripeSubscriptionID) == "" {
		j.logg.Info(logCtx, "listing missing stripe subscription id; skipping")
		return false, nil
	}
	subscriptionID := *listing.StripeSubscriptionID
	logCtx = j.logg.WithField(logCtx, "stripe_subscription_id", subscriptionID)

	sub, err := j.stripe.Get(logCtx, subscriptionID, &stripe.SubscriptionParams{})
	if err != nil {
		return false, fmt.Errorf("fetch stripe subscription %s: %w", subscriptionID, err)
	}
	if sub == nil {
		j.logg.Info(logCtx, "stripe subscription not found; skipping")
		return false, nil
	}
	if !subscriptionLapsed(sub.Status) {
		return false, nil
	}

	result := marketplace.PaymentResult{
		ListingID:      listing.ID,
		SubscriptionID: sub.ID,
		Captured:       false,
	}
	if err := j.marketplace.HandlePaymentResult(logCtx, result); err != nil {
		return false, fmt.Errorf("downgrade listing %s: %w", listing.ID, err)
	}
	statusCtx := j.logg.WithField(logCtx, "stripe_status", string(sub.Status))
	j.logg.Info(statusCtx, "lapsed subscription reconciled")
	return true, nil
}

func subscriptionLapsed(status stripe.SubscriptionStatus) bool {
	switch status {
	case stripe.SubscriptionStatusCanceled,
		stripe.SubscriptionStatusUnpaid,
		stripe.SubscriptionStatusIncompleteExpired:
		return true
	default:
		return false
	}
}
