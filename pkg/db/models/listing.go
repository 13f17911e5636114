package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/easyukapp/easyuk-backend/pkg/enums"
	"github.com/easyukapp/easyuk-backend/pkg/types"
)

// Listing represents a provider's service listing in the marketplace.
type Listing struct {
	ID                   uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID           uuid.UUID              `gorm:"column:provider_id;type:uuid;not null"`
	ServiceName          string                 `gorm:"column:service_name;not null"`
	Description          *string                `gorm:"column:description"`
	Category             enums.ListingCategory  `gorm:"column:category;type:listing_category;not null"`
	Pricing              *string                `gorm:"column:pricing"`
	Photos               pq.StringArray         `gorm:"column:photos;type:text[]"`
	Languages            pq.StringArray         `gorm:"column:languages;type:text[]"`
	Phone                *string                `gorm:"column:phone"`
	Email                *string                `gorm:"column:email"`
	SocialLinks          *types.SocialLinks     `gorm:"column:social_links;type:jsonb"`
	Latitude             *float64               `gorm:"column:latitude"`
	Longitude            *float64               `gorm:"column:longitude"`
	Address              *string                `gorm:"column:address"`
	Status               enums.ListingStatus    `gorm:"column:status;type:listing_status;not null;default:'trial'"`
	SubscriptionTier     enums.SubscriptionTier `gorm:"column:subscription_tier;type:subscription_tier;not null;default:'standard'"`
	TrialStart           *time.Time             `gorm:"column:trial_start"`
	TrialEnd             *time.Time             `gorm:"column:trial_end"`
	StripeSubscriptionID *string                `gorm:"column:stripe_subscription_id"`
	ViewCount            int64                  `gorm:"column:view_count;not null;default:0"`
	ClickCount           int64                  `gorm:"column:click_count;not null;default:0"`
	CreatedAt            time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name used by GORM.
func (Listing) TableName() string {
	return "listings"
}

// HasSubscription reports whether a billing subscription is attached.
func (l Listing) HasSubscription() bool {
	return l.StripeSubscriptionID != nil && *l.StripeSubscriptionID != ""
}
