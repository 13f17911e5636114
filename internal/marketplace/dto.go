package marketplace

import (
	"time"

	"github.com/google/uuid"

	"github.com/easyukapp/easyuk-backend/pkg/enums"
	"github.com/easyukapp/easyuk-backend/pkg/geo"
	"github.com/easyukapp/easyuk-backend/pkg/types"
)

// CreateListingInput holds the fields a provider supplies when publishing a listing.
type CreateListingInput struct {
	ServiceName      string
	Description      *string
	Category         enums.ListingCategory
	Pricing          *string
	Photos           []string
	Languages        []string
	Phone            *string
	Email            *string
	SocialLinks      *types.SocialLinks
	Latitude         *float64
	Longitude        *float64
	Address          *string
	SubscriptionTier enums.SubscriptionTier
}

// UpdateListingInput carries a partial edit. Nil fields are left untouched.
// Tier and trial window fields are accepted only so the service can reject
// them explicitly.
type UpdateListingInput struct {
	ServiceName *string
	Description *string
	Category    *enums.ListingCategory
	Pricing     *string
	Photos      []string
	Languages   []string
	Phone       *string
	Email       *string
	SocialLinks *types.SocialLinks
	Latitude    *float64
	Longitude   *float64
	Address     *string

	SubscriptionTier *enums.SubscriptionTier
	TrialStart       *time.Time
	TrialEnd         *time.Time
}

// BrowseQuery describes a single browse request.
type BrowseQuery struct {
	Text     string
	Category enums.ListingCategory
	Sort     enums.SortMode
	Nearby   bool
	Origin   *geo.Coordinate
}

// PaymentResult is the payload delivered by the billing webhook.
type PaymentResult struct {
	ListingID      uuid.UUID
	SubscriptionID string
	Captured       bool
}

// SweepResult summarizes one expiry sweep run.
type SweepResult struct {
	Inspected int
	Cancelled int
	Skipped   int
}
