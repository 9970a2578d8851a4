package enums

import "fmt"

// ListingCondition describes whether a bottle is sealed or partially used.
type ListingCondition string

const (
	ListingConditionNew  ListingCondition = "new"
	ListingConditionUsed ListingCondition = "used"
)

var validListingConditions = []ListingCondition{
	ListingConditionNew,
	ListingConditionUsed,
}

// String implements fmt.Stringer.
func (l ListingCondition) String() string {
	return string(l)
}

// IsValid reports whether the value is a known ListingCondition.
func (l ListingCondition) IsValid() bool {
	for _, candidate := range validListingConditions {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseListingCondition converts raw input into a ListingCondition.
func ParseListingCondition(value string) (ListingCondition, error) {
	for _, candidate := range validListingConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing condition %q", value)
}
