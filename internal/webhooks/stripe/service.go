package stripewebhook

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/easyukapp/easyuk-backend/internal/marketplace"
	pkgerrors "github.com/easyukapp/easyuk-backend/pkg/errors"
)

type paymentApplier interface {
	HandlePaymentResult(ctx context.Context, result marketplace.PaymentResult) error
}

type subscriptionGetter interface {
	Get(ctx context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
}

type ServiceParams struct {
	Marketplace  paymentApplier
	StripeClient subscriptionGetter
}

type Service struct {
	marketplace paymentApplier
	stripe      subscriptionGetter
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Marketplace == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "marketplace service required")
	}
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	return &Service{
		marketplace: params.Marketplace,
		stripe:      params.StripeClient,
	}, nil
}

// HandleEvent translates a Stripe subscription lifecycle event into a payment
// result for the listing named in the subscription metadata.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		var stripeSub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode subscription event")
		}
		return s.applySubscription(ctx, &stripeSub)
	case stripe.EventTypeInvoicePaid, stripe.EventTypeInvoicePaymentFailed:
		subscriptionID := event.GetObjectValue("subscription")
		if subscriptionID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "subscription id missing")
		}
		stripeSub, err := s.stripe.Get(ctx, subscriptionID, &stripe.SubscriptionParams{})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch stripe subscription")
		}
		return s.applySubscription(ctx, stripeSub)
	default:
		return nil
	}
}

func (s *Service) applySubscription(ctx context.Context, stripeSub *stripe.Subscription) error {
	if stripeSub == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription is required")
	}
	listingID, err := ListingIDFromMetadata(stripeSub.Metadata)
	if err != nil {
		return err
	}
	result := marketplace.PaymentResult{
		ListingID:      listingID,
		SubscriptionID: stripeSub.ID,
		Captured:       paymentCaptured(stripeSub.Status),
	}
	return s.marketplace.HandlePaymentResult(ctx, result)
}

// ListingIDFromMetadata reads the listing reference that checkout attaches to
// every subscription it creates.
func ListingIDFromMetadata(metadata map[string]string) (uuid.UUID, error) {
	raw := strings.TrimSpace(metadata["listing_id"])
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "listing_id metadata missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse listing_id metadata")
	}
	return id, nil
}

func paymentCaptured(status stripe.SubscriptionStatus) bool {
	switch status {
	case stripe.SubscriptionStatusActive,
		stripe.SubscriptionStatusTrialing,
		stripe.SubscriptionStatusPastDue:
		return true
	default:
		return false
	}
}
