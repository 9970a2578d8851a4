package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmattyV/scentra-backend/pkg/enums"
)

// Item is a cart line: a listing snapshot taken when the buyer added it.
// OriginalPrice is what the buyer saw then; CurrentPrice and the two flags
// are refreshed by Validate against the live listing.
type Item struct {
	ID               uuid.UUID              `json:"id"`
	ListingID        uuid.UUID              `json:"listing_id"`
	SellerID         uuid.UUID              `json:"seller_id"`
	FragranceName    string                 `json:"fragrance_name"`
	Brand            string                 `json:"brand"`
	BottleSize       string                 `json:"bottle_size"`
	Condition        enums.ListingCondition `json:"condition"`
	PercentRemaining *int                   `json:"percent_remaining,omitempty"`
	ImageKey         string                 `json:"image_key"`
	OriginalPrice    decimal.Decimal        `json:"original_price"`
	CurrentPrice     decimal.Decimal        `json:"current_price"`
	IsAvailable      bool                   `json:"is_available"`
	PriceChanged     bool                   `json:"price_changed"`
	AddedAt          time.Time              `json:"added_at"`
}

// Cart is the per-buyer working set. It lives in Redis with a TTL and is
// destroyed on successful checkout, never persisted to Postgres.
type Cart struct {
	BuyerID   uuid.UUID `json:"buyer_id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FindItem returns the index of the item holding the listing, or -1.
func (c *Cart) FindItem(listingID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ListingID == listingID {
			return i
		}
	}
	return -1
}

// ValidationResult reports what Validate changed.
type ValidationResult struct {
	Cart    *Cart `json:"cart"`
	Changed bool  `json:"changed"`
}
