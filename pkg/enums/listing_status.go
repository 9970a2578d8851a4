package enums

import "fmt"

// ListingStatus tracks a listing through its marketplace and fulfillment lifecycle.
type ListingStatus string

const (
	ListingStatusActive            ListingStatus = "active"
	ListingStatusOnHold            ListingStatus = "on_hold"
	ListingStatusUnconfirmed       ListingStatus = "unconfirmed"
	ListingStatusShippingToScentra ListingStatus = "shipping_to_scentra"
	ListingStatusVerifying         ListingStatus = "verifying"
	ListingStatusShippingToBuyer   ListingStatus = "shipping_to_buyer"
	ListingStatusCompleted         ListingStatus = "completed"
	ListingStatusRemoved           ListingStatus = "removed"
)

var validListingStatuses = []ListingStatus{
	ListingStatusActive,
	ListingStatusOnHold,
	ListingStatusUnconfirmed,
	ListingStatusShippingToScentra,
	ListingStatusVerifying,
	ListingStatusShippingToBuyer,
	ListingStatusCompleted,
	ListingStatusRemoved,
}

// listingStatusTransitions is the allowed-target set per current status.
// A status never appears in its own target set, so same-state transitions
// are always rejected. removed is terminal.
var listingStatusTransitions = map[ListingStatus][]ListingStatus{
	ListingStatusActive:            {ListingStatusOnHold, ListingStatusUnconfirmed, ListingStatusRemoved},
	ListingStatusOnHold:            {ListingStatusActive, ListingStatusUnconfirmed, ListingStatusRemoved},
	ListingStatusUnconfirmed:       {ListingStatusShippingToScentra, ListingStatusRemoved},
	ListingStatusShippingToScentra: {ListingStatusVerifying, ListingStatusRemoved},
	ListingStatusVerifying:         {ListingStatusShippingToBuyer, ListingStatusRemoved},
	ListingStatusShippingToBuyer:   {ListingStatusCompleted, ListingStatusRemoved},
	ListingStatusCompleted:         {ListingStatusRemoved},
	ListingStatusRemoved:           {},
}

// sharedOrderItemStatuses is the post-purchase vocabulary mirrored onto
// order items. on_hold and removed stay listing-only.
var sharedOrderItemStatuses = map[ListingStatus]bool{
	ListingStatusActive:            true,
	ListingStatusUnconfirmed:       true,
	ListingStatusShippingToScentra: true,
	ListingStatusVerifying:         true,
	ListingStatusShippingToBuyer:   true,
	ListingStatusCompleted:         true,
}

// String implements fmt.Stringer.
func (l ListingStatus) String() string {
	return string(l)
}

// IsValid reports whether the value is a known ListingStatus.
func (l ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the state machine allows moving from the
// current status to target.
func (l ListingStatus) CanTransitionTo(target ListingStatus) bool {
	for _, candidate := range listingStatusTransitions[l] {
		if candidate == target {
			return true
		}
	}
	return false
}

// AllowedTargets returns the statuses reachable from the current status.
func (l ListingStatus) AllowedTargets() []ListingStatus {
	targets := listingStatusTransitions[l]
	out := make([]ListingStatus, len(targets))
	copy(out, targets)
	return out
}

// PropagatesToOrderItems reports whether the status belongs to the shared
// vocabulary that order items mirror.
func (l ListingStatus) PropagatesToOrderItems() bool {
	return sharedOrderItemStatuses[l]
}

// IsTerminal reports whether no further transitions are permitted.
func (l ListingStatus) IsTerminal() bool {
	return len(listingStatusTransitions[l]) == 0
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
