package enums

import "fmt"

// ListingCategory represents the canonical service categories in the marketplace.
type ListingCategory string

const (
	ListingCategoryRepair       ListingCategory = "repair"
	ListingCategoryBeauty       ListingCategory = "beauty"
	ListingCategoryConstruction ListingCategory = "construction"
	ListingCategoryCleaning     ListingCategory = "cleaning"
	ListingCategoryDelivery     ListingCategory = "delivery"
	ListingCategoryFood         ListingCategory = "food"
	ListingCategoryTransport    ListingCategory = "transport"
	ListingCategoryLegal        ListingCategory = "legal"
	ListingCategoryAccounting   ListingCategory = "accounting"
	ListingCategoryTranslation  ListingCategory = "translation"
	ListingCategoryEducation    ListingCategory = "education"
	ListingCategoryHealthcare   ListingCategory = "healthcare"
	ListingCategoryHousing      ListingCategory = "housing"
	ListingCategoryCarServices  ListingCategory = "car_services"
	ListingCategoryOther        ListingCategory = "other"

	// ListingCategoryAll is a filter-only wildcard, never stored on a listing.
	ListingCategoryAll ListingCategory = "all"
)

var validListingCategories = []ListingCategory{
	ListingCategoryRepair,
	ListingCategoryBeauty,
	ListingCategoryConstruction,
	ListingCategoryCleaning,
	ListingCategoryDelivery,
	ListingCategoryFood,
	ListingCategoryTransport,
	ListingCategoryLegal,
	ListingCategoryAccounting,
	ListingCategoryTranslation,
	ListingCategoryEducation,
	ListingCategoryHealthcare,
	ListingCategoryHousing,
	ListingCategoryCarServices,
	ListingCategoryOther,
}

// String implements fmt.Stringer.
func (c ListingCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a storable ListingCategory.
func (c ListingCategory) IsValid() bool {
	for _, candidate := range validListingCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsWildcard reports whether the category matches everything.
func (c ListingCategory) IsWildcard() bool {
	return c == ListingCategoryAll || c == ""
}

// ParseListingCategory converts raw input into a ListingCategory.
func ParseListingCategory(value string) (ListingCategory, error) {
	if value == string(ListingCategoryAll) {
		return ListingCategoryAll, nil
	}
	for _, candidate := range validListingCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing category %q", value)
}
