package listings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmattyV/scentra-backend/pkg/enums"
	"github.com/mmattyV/scentra-backend/pkg/pagination"
)

// ListingListFilters narrows the public browse query.
type ListingListFilters struct {
	Status      *enums.ListingStatus
	SellerID    *uuid.UUID
	FragranceID *uuid.UUID
	Condition   *enums.ListingCondition
	PriceMin    *decimal.Decimal
	PriceMax    *decimal.Decimal
	Query       string
}

// ListListingsInput carries pagination plus filters.
type ListListingsInput struct {
	Pagination pagination.Params
	Filters    ListingListFilters
}

// ListingSummary is the browse-page projection joined with catalog data.
type ListingSummary struct {
	ID               uuid.UUID              `json:"id"`
	SellerID         uuid.UUID              `json:"seller_id"`
	FragranceID      uuid.UUID              `json:"fragrance_id"`
	FragranceName    string                 `json:"fragrance_name"`
	Brand            string                 `json:"brand"`
	BottleSize       string                 `json:"bottle_size"`
	Condition        enums.ListingCondition `json:"condition"`
	PercentRemaining *int                   `json:"percent_remaining,omitempty"`
	HasOriginalBox   bool                   `json:"has_original_box"`
	AskingPrice      decimal.Decimal        `json:"asking_price"`
	ImageKey         string                 `json:"image_key"`
	Status           enums.ListingStatus    `json:"status"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// ListingListResult is one page of summaries plus the next cursor.
type ListingListResult struct {
	Listings   []ListingSummary `json:"listings"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
