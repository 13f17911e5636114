package marketplace

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/easyukapp/easyuk-backend/pkg/db/models"
	"github.com/easyukapp/easyuk-backend/pkg/enums"
	"github.com/easyukapp/easyuk-backend/pkg/geo"
)

// Rank filters and orders a snapshot of visible listings. The input order is
// assumed newest-first; all sorts are stable so ties keep that order. Rank
// never mutates the input rows.
func Rank(listings []models.Listing, query BrowseQuery, nearbyRadiusKm float64) []models.Listing {
	working := make([]models.Listing, 0, len(listings))
	working = append(working, listings...)

	if query.Nearby && query.Origin != nil {
		working = filterNearby(working, *query.Origin, nearbyRadiusKm)
	}
	if !query.Category.IsWildcard() {
		working = filterCategory(working, query.Category)
	}
	if text := strings.TrimSpace(query.Text); text != "" {
		working = filterText(working, text)
	}

	switch query.Sort {
	case enums.SortModePrice:
		sortByPrice(working)
	default:
		sortPremiumFirst(working)
	}
	return working
}

func filterNearby(listings []models.Listing, origin geo.Coordinate, radiusKm float64) []models.Listing {
	kept := listings[:0]
	for _, listing := range listings {
		if listing.Latitude == nil || listing.Longitude == nil {
			continue
		}
		point := geo.Coordinate{Lat: *listing.Latitude, Lng: *listing.Longitude}
		if geo.DistanceKm(origin, point) <= radiusKm {
			kept = append(kept, listing)
		}
	}
	return kept
}

func filterCategory(listings []models.Listing, category enums.ListingCategory) []models.Listing {
	kept := listings[:0]
	for _, listing := range listings {
		if listing.Category == category {
			kept = append(kept, listing)
		}
	}
	return kept
}

func filterText(listings []models.Listing, text string) []models.Listing {
	needle := strings.ToLower(text)
	kept := listings[:0]
	for _, listing := range listings {
		if strings.Contains(strings.ToLower(listing.ServiceName), needle) {
			kept = append(kept, listing)
			continue
		}
		if listing.Description != nil && strings.Contains(strings.ToLower(*listing.Description), needle) {
			kept = append(kept, listing)
		}
	}
	return kept
}

func sortByPrice(listings []models.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		return ParsePrice(listings[i].Pricing).LessThan(ParsePrice(listings[j].Pricing))
	})
}

func sortPremiumFirst(listings []models.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].SubscriptionTier.IsPremium() && !listings[j].SubscriptionTier.IsPremium()
	})
}

// ParsePrice extracts a numeric value from a free-text price such as "£12.50
// per hour". Every non-digit, non-decimal-point character is stripped before
// parsing; empty or unparsable input yields zero.
func ParsePrice(raw *string) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	var b strings.Builder
	for _, r := range *raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return value
}
