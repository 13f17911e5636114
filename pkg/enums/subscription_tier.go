package enums

import "fmt"

// SubscriptionTier determines a listing's placement priority in results.
type SubscriptionTier string

const (
	SubscriptionTierStandard SubscriptionTier = "standard"
	SubscriptionTierTop      SubscriptionTier = "top"
	SubscriptionTierPremium  SubscriptionTier = "premium"
)

var validSubscriptionTiers = []SubscriptionTier{
	SubscriptionTierStandard,
	SubscriptionTierTop,
	SubscriptionTierPremium,
}

// String implements fmt.Stringer.
func (t SubscriptionTier) String() string {
	return string(t)
}

// IsValid reports whether the value is a known SubscriptionTier.
func (t SubscriptionTier) IsValid() bool {
	for _, candidate := range validSubscriptionTiers {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsPremium reports whether listings on this tier rank ahead of standard ones.
func (t SubscriptionTier) IsPremium() bool {
	return t == SubscriptionTierTop || t == SubscriptionTierPremium
}

// ParseSubscriptionTier converts raw input into a SubscriptionTier.
func ParseSubscriptionTier(value string) (SubscriptionTier, error) {
	for _, candidate := range validSubscriptionTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subscription tier %q", value)
}
