package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/easyukapp/easyuk-backend/internal/marketplace"
	pkgerrors "github.com/easyukapp/easyuk-backend/pkg/errors"
)

type stubApplier struct {
	results []marketplace.PaymentResult
	err     error
}

func (s *stubApplier) HandlePaymentResult(_ context.Context, result marketplace.PaymentResult) error {
	s.results = append(s.results, result)
	return s.err
}

type stubGetter struct {
	getResp *stripe.Subscription
	getErr  error
}

func (s *stubGetter) Get(context.Context, string, *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.getResp, nil
}

func newWebhookService(t *testing.T, applier *stubApplier, getter *stubGetter) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{Marketplace: applier, StripeClient: getter})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return service
}

func subscriptionEvent(t *testing.T, eventType stripe.EventType, sub *stripe.Subscription) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("marshal subscription: %v", err)
	}
	return &stripe.Event{Type: eventType, Data: &stripe.EventData{Raw: raw}}
}

func TestService_HandleSubscriptionCreatedActivatesListing(t *testing.T) {
	listingID := uuid.New()
	applier := &stubApplier{}
	service := newWebhookService(t, applier, &stubGetter{})

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionCreated, &stripe.Subscription{
		ID:       "sub_test",
		Status:   stripe.SubscriptionStatusActive,
		Metadata: map[string]string{"listing_id": listingID.String()},
	})

	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(applier.results) != 1 {
		t.Fatalf("expected one payment result, got %d", len(applier.results))
	}
	got := applier.results[0]
	if got.ListingID != listingID || got.SubscriptionID != "sub_test" || !got.Captured {
		t.Fatalf("unexpected payment result: %+v", got)
	}
}

func TestService_HandleSubscriptionDeletedCancelsListing(t *testing.T) {
	listingID := uuid.New()
	applier := &stubApplier{}
	service := newWebhookService(t, applier, &stubGetter{})

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionDeleted, &stripe.Subscription{
		ID:       "sub_cancel",
		Status:   stripe.SubscriptionStatusCanceled,
		Metadata: map[string]string{"listing_id": listingID.String()},
	})

	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(applier.results) != 1 {
		t.Fatalf("expected one payment result, got %d", len(applier.results))
	}
	if applier.results[0].Captured {
		t.Fatal("expected a cancelled subscription to report captured=false")
	}
}

func TestService_HandleInvoiceEventFetchesStripe(t *testing.T) {
	listingID := uuid.New()
	applier := &stubApplier{}
	getter := &stubGetter{
		getResp: &stripe.Subscription{
			ID:       "sub_invoice",
			Status:   stripe.SubscriptionStatusPastDue,
			Metadata: map[string]string{"listing_id": listingID.String()},
		},
	}
	service := newWebhookService(t, applier, getter)

	event := &stripe.Event{
		Type: stripe.EventTypeInvoicePaid,
		Data: &stripe.EventData{
			Object: map[string]interface{}{"subscription": "sub_invoice"},
		},
	}
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(applier.results) != 1 {
		t.Fatalf("expected one payment result, got %d", len(applier.results))
	}
	got := applier.results[0]
	if got.ListingID != listingID || !got.Captured {
		t.Fatalf("past_due should keep the listing entitled, got %+v", got)
	}
}

func TestService_HandleEventRequiresListingMetadata(t *testing.T) {
	applier := &stubApplier{}
	service := newWebhookService(t, applier, &stubGetter{})

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionCreated, &stripe.Subscription{
		ID:     "sub_orphan",
		Status: stripe.SubscriptionStatusActive,
	})

	err := service.HandleEvent(context.Background(), event)
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if len(applier.results) != 0 {
		t.Fatal("expected no payment result without listing metadata")
	}
}

func TestService_HandleEventIgnoresUnrelatedTypes(t *testing.T) {
	applier := &stubApplier{}
	service := newWebhookService(t, applier, &stubGetter{})

	event := &stripe.Event{Type: stripe.EventTypeChargeRefunded, Data: &stripe.EventData{}}
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(applier.results) != 0 {
		t.Fatal("expected unrelated events to be ignored")
	}
}
