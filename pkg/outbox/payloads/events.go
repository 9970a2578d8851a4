package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmattyV/scentra-backend/pkg/enums"
)

// ListingStatusChangedEvent records a listing transition. The order item
// fan-out happens after this event is written, so it carries no counts.
type ListingStatusChangedEvent struct {
	ListingID  uuid.UUID           `json:"listing_id"`
	SellerID   uuid.UUID           `json:"seller_id"`
	FromStatus enums.ListingStatus `json:"from_status"`
	ToStatus   enums.ListingStatus `json:"to_status"`
	ChangedAt  time.Time           `json:"changed_at"`
}

// ListingRemovedEvent is emitted when a seller takes a listing down.
type ListingRemovedEvent struct {
	ListingID uuid.UUID `json:"listing_id"`
	SellerID  uuid.UUID `json:"seller_id"`
	RemovedAt time.Time `json:"removed_at"`
}

// OrderCreatedEvent signals a successful checkout.
type OrderCreatedEvent struct {
	OrderID    uuid.UUID       `json:"order_id"`
	BuyerID    uuid.UUID       `json:"buyer_id"`
	ListingIDs []uuid.UUID     `json:"listing_ids"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Total      decimal.Decimal `json:"total"`
}

// OrderStatusChangedEvent is emitted on any order status update.
type OrderStatusChangedEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	BuyerID    uuid.UUID         `json:"buyer_id"`
	FromStatus enums.OrderStatus `json:"from_status"`
	ToStatus   enums.OrderStatus `json:"to_status"`
	Forced     bool              `json:"forced,omitempty"`
}

// OrderCancelledEvent is emitted when a buyer cancels their own order.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	BuyerID     uuid.UUID `json:"buyer_id"`
	CancelledAt time.Time `json:"cancelled_at"`
	Reason      string    `json:"reason,omitempty"`
}

// PaymentStatusChangedEvent is emitted when an admin marks an order paid,
// refunded, or back to awaiting payment.
type PaymentStatusChangedEvent struct {
	OrderID    uuid.UUID           `json:"order_id"`
	BuyerID    uuid.UUID           `json:"buyer_id"`
	FromStatus enums.PaymentStatus `json:"from_status"`
	ToStatus   enums.PaymentStatus `json:"to_status"`
}

// ReservationReleasedEvent records a rollback returning a listing to active.
type ReservationReleasedEvent struct {
	ListingID  uuid.UUID `json:"listing_id"`
	OrderID    uuid.UUID `json:"order_id"`
	ReleasedAt time.Time `json:"released_at"`
}

// CheckoutConflictEvent records a checkout lost to a concurrent buyer.
type CheckoutConflictEvent struct {
	BuyerID            uuid.UUID   `json:"buyer_id"`
	ConflictListingIDs []uuid.UUID `json:"conflict_listing_ids"`
	OccurredAt         time.Time   `json:"occurred_at"`
}
