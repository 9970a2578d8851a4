package orders

import (
	"github.com/google/uuid"

	"github.com/mmattyV/scentra-backend/pkg/db/models"
	"github.com/mmattyV/scentra-backend/pkg/enums"
	"github.com/mmattyV/scentra-backend/pkg/pagination"
)

// OrderListFilters narrows order list queries.
type OrderListFilters struct {
	OrderStatus   *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	BuyerID       *uuid.UUID
	SellerID      *uuid.UUID
}

// ListOrdersInput carries pagination plus filters.
type ListOrdersInput struct {
	Pagination pagination.Params
	Filters    OrderListFilters
}

// OrderListResult is one page of orders plus the next cursor.
type OrderListResult struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
