package enums

import "fmt"

// ListingStatus tracks where a listing sits in its subscription lifecycle.
type ListingStatus string

const (
	ListingStatusTrial     ListingStatus = "trial"
	ListingStatusActive    ListingStatus = "active"
	ListingStatusCancelled ListingStatus = "cancelled"
)

var validListingStatuses = []ListingStatus{
	ListingStatusTrial,
	ListingStatusActive,
	ListingStatusCancelled,
}

// String implements fmt.Stringer.
func (s ListingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ListingStatus.
func (s ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsVisible reports whether listings in this status appear in browse results.
func (s ListingStatus) IsVisible() bool {
	return s == ListingStatusTrial || s == ListingStatusActive
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}
