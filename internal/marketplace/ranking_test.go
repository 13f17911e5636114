package marketplace

import (
	"testing"

	"github.com/google/uuid"

	"github.com/easyukapp/easyuk-backend/pkg/db/models"
	"github.com/easyukapp/easyuk-backend/pkg/enums"
	"github.com/easyukapp/easyuk-backend/pkg/geo"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func listingNamed(name string, tier enums.SubscriptionTier) models.Listing {
	return models.Listing{
		ID:               uuid.New(),
		ServiceName:      name,
		Category:         enums.ListingCategoryCleaning,
		Status:           enums.ListingStatusActive,
		SubscriptionTier: tier,
	}
}

func TestRankNearbyExcludesFarAndUnlocatedListings(t *testing.T) {
	origin := geo.Coordinate{Lat: 51.5074, Lng: -0.1278} // central London

	near := listingNamed("near", enums.SubscriptionTierStandard)
	near.Latitude = f64Ptr(51.52)
	near.Longitude = f64Ptr(-0.13)

	far := listingNamed("far", enums.SubscriptionTierStandard)
	far.Latitude = f64Ptr(53.4808) // Manchester
	far.Longitude = f64Ptr(-2.2426)

	unlocated := listingNamed("unlocated", enums.SubscriptionTierStandard)

	got := Rank([]models.Listing{near, far, unlocated}, BrowseQuery{Nearby: true, Origin: &origin}, 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(got))
	}
	if got[0].ServiceName != "near" {
		t.Fatalf("expected the nearby listing, got %q", got[0].ServiceName)
	}
}

func TestRankNearbyWithoutOriginIsNoOp(t *testing.T) {
	a := listingNamed("a", enums.SubscriptionTierStandard)
	b := listingNamed("b", enums.SubscriptionTierStandard)

	got := Rank([]models.Listing{a, b}, BrowseQuery{Nearby: true}, 10)
	if len(got) != 2 {
		t.Fatalf("expected all listings to pass, got %d", len(got))
	}
}

func TestRankCategoryFilter(t *testing.T) {
	cleaning := listingNamed("cleaner", enums.SubscriptionTierStandard)
	repair := listingNamed("mechanic", enums.SubscriptionTierStandard)
	repair.Category = enums.ListingCategoryRepair

	got := Rank([]models.Listing{cleaning, repair}, BrowseQuery{Category: enums.ListingCategoryRepair}, 10)
	if len(got) != 1 || got[0].ServiceName != "mechanic" {
		t.Fatalf("unexpected category filter result: %+v", got)
	}

	got = Rank([]models.Listing{cleaning, repair}, BrowseQuery{Category: enums.ListingCategoryAll}, 10)
	if len(got) != 2 {
		t.Fatalf("expected wildcard to keep everything, got %d", len(got))
	}
}

func TestRankTextFilterMatchesNameOrDescription(t *testing.T) {
	byName := listingNamed("Deep Clean London", enums.SubscriptionTierStandard)
	byDescription := listingNamed("Sparkle Ltd", enums.SubscriptionTierStandard)
	byDescription.Description = strPtr("End of tenancy CLEANING specialists")
	neither := listingNamed("Plumber", enums.SubscriptionTierStandard)

	got := Rank([]models.Listing{byName, byDescription, neither}, BrowseQuery{Text: "clean"}, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
}

func TestRankPriceSortIsAscendingOnParsedValue(t *testing.T) {
	expensive := listingNamed("expensive", enums.SubscriptionTierTop)
	expensive.Pricing = strPtr("£50")
	cheap := listingNamed("cheap", enums.SubscriptionTierStandard)
	cheap.Pricing = strPtr("£12.50")
	free := listingNamed("free", enums.SubscriptionTierStandard)
	free.Pricing = strPtr("contact us")

	got := Rank([]models.Listing{expensive, cheap, free}, BrowseQuery{Sort: enums.SortModePrice}, 10)
	want := []string{"free", "cheap", "expensive"}
	for i, name := range want {
		if got[i].ServiceName != name {
			t.Fatalf("position %d: expected %q, got %q", i, name, got[i].ServiceName)
		}
	}
}

func TestRankNewestPlacesPremiumFirstPreservingOrder(t *testing.T) {
	s1 := listingNamed("standard-1", enums.SubscriptionTierStandard)
	p1 := listingNamed("premium-1", enums.SubscriptionTierTop)
	s2 := listingNamed("standard-2", enums.SubscriptionTierStandard)
	p2 := listingNamed("premium-2", enums.SubscriptionTierPremium)

	got := Rank([]models.Listing{s1, p1, s2, p2}, BrowseQuery{Sort: enums.SortModeNewest}, 10)
	want := []string{"premium-1", "premium-2", "standard-1", "standard-2"}
	for i, name := range want {
		if got[i].ServiceName != name {
			t.Fatalf("position %d: expected %q, got %q", i, name, got[i].ServiceName)
		}
	}
}

func TestRankEmptyResultIsValid(t *testing.T) {
	got := Rank(nil, BrowseQuery{Text: "anything"}, 10)
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		raw  *string
		want string
	}{
		{strPtr("£50"), "50"},
		{strPtr("£12.50 per hour"), "12.5"},
		{strPtr("from 100 GBP"), "100"},
		{strPtr("negotiable"), "0"},
		{strPtr(""), "0"},
		{nil, "0"},
	}
	for _, tc := range cases {
		if got := ParsePrice(tc.raw).String(); got != tc.want {
			t.Fatalf("ParsePrice(%v): expected %s, got %s", tc.raw, tc.want, got)
		}
	}
}
