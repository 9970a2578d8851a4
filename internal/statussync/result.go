package statussync

import (
	"time"

	"github.com/google/uuid"

	"github.com/mmattyV/scentra-backend/pkg/enums"
)

// ItemOutcome records the fan-out result for a single order item.
type ItemOutcome struct {
	OrderItemID uuid.UUID `json:"order_item_id"`
	OrderID     uuid.UUID `json:"order_id"`
	Updated     bool      `json:"updated"`
	Error       string    `json:"error,omitempty"`
}

// Result is the batch outcome of one listing transition: the listing flip
// that committed plus the per-item mirror outcomes. A failed item never
// rolls the listing back; callers inspect the result instead.
type Result struct {
	ListingID    uuid.UUID           `json:"listing_id"`
	From         enums.ListingStatus `json:"from"`
	To           enums.ListingStatus `json:"to"`
	Items        []ItemOutcome       `json:"items,omitempty"`
	ItemsUpdated int                 `json:"items_updated"`
	ItemsFailed  int                 `json:"items_failed"`
	CompletedAt  time.Time           `json:"completed_at"`
}

// Complete reports whether every order item mirrored the transition.
func (r *Result) Complete() bool {
	return r != nil && r.ItemsFailed == 0
}
