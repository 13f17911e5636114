package enums

import "fmt"

// SortMode selects the secondary ordering applied within each tier group.
type SortMode string

const (
	SortModeNewest SortMode = "newest"
	SortModePrice  SortMode = "price"
)

var validSortModes = []SortMode{
	SortModeNewest,
	SortModePrice,
}

// String implements fmt.Stringer.
func (m SortMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known SortMode.
func (m SortMode) IsValid() bool {
	for _, candidate := range validSortModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseSortMode converts raw input into a SortMode.
func ParseSortMode(value string) (SortMode, error) {
	if value == "" {
		return SortModeNewest, nil
	}
	for _, candidate := range validSortModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort mode %q", value)
}
