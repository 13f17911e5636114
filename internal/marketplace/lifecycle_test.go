package marketplace

import (
	"testing"
	"time"

	"github.com/easyukapp/easyuk-backend/pkg/enums"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to enums.ListingStatus }{
		{enums.ListingStatusTrial, enums.ListingStatusActive},
		{enums.ListingStatusTrial, enums.ListingStatusCancelled},
		{enums.ListingStatusActive, enums.ListingStatusCancelled},
		{enums.ListingStatusCancelled, enums.ListingStatusActive},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to enums.ListingStatus }{
		{enums.ListingStatusActive, enums.ListingStatusTrial},
		{enums.ListingStatusCancelled, enums.ListingStatusTrial},
		{enums.ListingStatusCancelled, enums.ListingStatusCancelled},
		{enums.ListingStatusTrial, enums.ListingStatusTrial},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestTrialWindowSpansExactDays(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.FixedZone("BST", 3600))
	start, end := trialWindow(now, 14)

	if start.Location() != time.UTC {
		t.Fatal("trial start should be normalized to UTC")
	}
	if got := end.Sub(start); got != 14*24*time.Hour {
		t.Fatalf("expected exactly 14 days, got %v", got)
	}
}
