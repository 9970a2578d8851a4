package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mmattyV/scentra-backend/internal/cart"
	"github.com/mmattyV/scentra-backend/pkg/db/models"
	"github.com/mmattyV/scentra-backend/pkg/enums"
	pkgerrors "github.com/mmattyV/scentra-backend/pkg/errors"
	"github.com/mmattyV/scentra-backend/pkg/logger"
	"github.com/mmattyV/scentra-backend/pkg/metrics"
	"github.com/mmattyV/scentra-backend/pkg/outbox"
	"github.com/mmattyV/scentra-backend/pkg/outbox/payloads"
	"github.com/mmattyV/scentra-backend/pkg/types"
)

// verificationFeeRate is the platform fee applied to every order subtotal.
var verificationFeeRate = decimal.RequireFromString("0.03")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type listingLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

type orderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

// reserver flips a listing into and out of the checkout hold. Reserve
// fails with a conflict when the listing is no longer active, which is
// the compare-and-swap this saga's correctness rests on.
type reserver interface {
	Reserve(ctx context.Context, listingID uuid.UUID) error
	Release(ctx context.Context, listingID, orderID uuid.UUID) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateOrderInput carries the buyer's checkout form.
type CreateOrderInput struct {
	ShippingAddress types.Address       `json:"shipping_address"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	Notes           *string             `json:"notes,omitempty"`
}

// Service converts a cart into an order without overselling any listing.
type Service interface {
	CreateOrder(ctx context.Context, buyerID uuid.UUID, input CreateOrderInput) (*models.Order, error)
}

type service struct {
	carts    cart.Store
	listings listingLoader
	orders   orderStore
	reserver reserver
	tx       txRunner
	outbox   outboxPublisher
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
}

// NewService wires the checkout saga. Metrics and logger may be nil.
func NewService(
	carts cart.Store,
	listings listingLoader,
	orders orderStore,
	res reserver,
	tx txRunner,
	publisher outboxPublisher,
	m *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if listings == nil {
		return nil, fmt.Errorf("listing loader required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if res == nil {
		return nil, fmt.Errorf("reserver required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		carts:    carts,
		listings: listings,
		orders:   orders,
		reserver: res,
		tx:       tx,
		outbox:   publisher,
		metrics:  m,
		logg:     logg,
	}, nil
}

// CreateOrder runs the checkout saga: validate every cart listing, persist
// the order and its item snapshots, then reserve each listing with a
// conditional active to on_hold flip. Losing any reservation deletes the
// order and releases the holds that did land, so a conflicted checkout
// leaves no trace beyond its outbox event.
func (s *service) CreateOrder(ctx context.Context, buyerID uuid.UUID, input CreateOrderInput) (*models.Order, error) {
	started := time.Now()

	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	buyerCart, err := s.carts.Load(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(buyerCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	if unavailable := s.validateListings(ctx, buyerCart); len(unavailable) > 0 {
		s.observe("validation_conflict", started)
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "items no longer available").
			WithDetails(unavailable)
	}

	order := s.buildOrder(buyerID, input, buyerCart)
	order, err = s.orders.CreateOrder(ctx, order)
	if err != nil {
		s.observe("error", started)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	reserved, conflicted := s.reserveListings(ctx, buyerCart)
	if len(conflicted) > 0 {
		s.compensate(ctx, buyerID, order, reserved, conflicted)
		if s.metrics != nil {
			s.metrics.IncConflict()
		}
		s.observe("conflict", started)
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "items no longer available").
			WithDetails(conflicted)
	}

	if err := s.carts.Delete(ctx, buyerID); err != nil {
		// The order exists either way; a stale cart self-corrects on the
		// next validation pass.
		if s.logg != nil {
			s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "clear cart after checkout", err)
		}
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderCreatedEvent{
				OrderID:    order.ID,
				BuyerID:    buyerID,
				ListingIDs: reserved,
				Subtotal:   order.Subtotal,
				Total:      order.Total,
			},
		})
	}); err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "emit order created", err)
		}
	}

	s.observe("success", started)
	return order, nil
}

// validateListings re-fetches every cart listing and returns the fragrance
// names that are missing or no longer active. Any hit aborts the checkout
// before an order row exists.
func (s *service) validateListings(ctx context.Context, buyerCart *cart.Cart) []string {
	var unavailable []string
	for _, item := range buyerCart.Items {
		listing, err := s.listings.FindByID(ctx, item.ListingID)
		if err != nil || listing.Status != enums.ListingStatusActive {
			unavailable = append(unavailable, item.FragranceName)
		}
	}
	return unavailable
}

func (s *service) buildOrder(buyerID uuid.UUID, input CreateOrderInput, buyerCart *cart.Cart) *models.Order {
	subtotal := decimal.Zero
	for _, item := range buyerCart.Items {
		subtotal = subtotal.Add(item.CurrentPrice)
	}
	total := subtotal.Add(subtotal.Mul(verificationFeeRate)).Round(2)

	order := &models.Order{
		ID:                  uuid.New(),
		BuyerID:             buyerID,
		ShippingAddress:     input.ShippingAddress,
		Subtotal:            subtotal.Round(2),
		Total:               total,
		PaymentStatus:       enums.PaymentStatusAwaitingPayment,
		OrderStatus:         enums.OrderStatusPending,
		PaymentMethod:       input.PaymentMethod,
		PaymentInstructions: paymentInstructions(input.PaymentMethod, total),
		Notes:               input.Notes,
	}
	for _, item := range buyerCart.Items {
		order.Items = append(order.Items, models.OrderItem{
			ID:               uuid.New(),
			OrderID:          order.ID,
			ListingID:        item.ListingID,
			SellerID:         item.SellerID,
			FragranceName:    item.FragranceName,
			Brand:            item.Brand,
			BottleSize:       item.BottleSize,
			Condition:        item.Condition,
			PercentRemaining: item.PercentRemaining,
			Price:            item.CurrentPrice,
			ImageURL:         item.ImageKey,
			Status:           enums.ListingStatusUnconfirmed,
		})
	}
	return order
}

// reserveListings attempts the conditional hold on every cart listing.
// Attempts are independent so a single lost race still reports every
// listing that became unavailable, not just the first.
func (s *service) reserveListings(ctx context.Context, buyerCart *cart.Cart) (reserved []uuid.UUID, conflicted []string) {
	for _, item := range buyerCart.Items {
		if err := s.reserver.Reserve(ctx, item.ListingID); err != nil {
			conflicted = append(conflicted, item.FragranceName)
			continue
		}
		reserved = append(reserved, item.ListingID)
	}
	return reserved, conflicted
}

// compensate unwinds a conflicted checkout: the order and its items are
// deleted and every hold that landed is released back to active.
func (s *service) compensate(ctx context.Context, buyerID uuid.UUID, order *models.Order, reserved []uuid.UUID, conflicted []string) {
	ctx = s.orderCtx(ctx, order.ID)

	if err := s.orders.DeleteOrder(ctx, order.ID); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "delete conflicted order", err)
		}
	}
	for _, listingID := range reserved {
		if err := s.reserver.Release(ctx, listingID, order.ID); err != nil {
			if s.logg != nil {
				s.logg.Error(s.logg.WithListingID(ctx, listingID.String()), "release reservation", err)
			}
		}
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCheckoutConflict,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.CheckoutConflictEvent{
				BuyerID:            buyerID,
				ConflictListingIDs: conflictListingIDs(order, conflicted),
				OccurredAt:         time.Now().UTC(),
			},
		})
	}); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "emit checkout conflict", err)
		}
	}
}

// conflictListingIDs maps the conflicted fragrance names back to listing
// ids using the order item snapshots.
func conflictListingIDs(order *models.Order, conflicted []string) []uuid.UUID {
	names := make(map[string]bool, len(conflicted))
	for _, name := range conflicted {
		names[name] = true
	}
	var ids []uuid.UUID
	for _, item := range order.Items {
		if names[item.FragranceName] {
			ids = append(ids, item.ListingID)
		}
	}
	return ids
}

func paymentInstructions(method enums.PaymentMethod, total decimal.Decimal) string {
	amount := total.StringFixed(2)
	switch method {
	case enums.PaymentMethodVenmo:
		return fmt.Sprintf("Send $%s via Venmo to @scentra-payments with your order ID in the note.", amount)
	case enums.PaymentMethodZelle:
		return fmt.Sprintf("Send $%s via Zelle to payments@scentra.com with your order ID in the memo.", amount)
	case enums.PaymentMethodPaypal:
		return fmt.Sprintf("Send $%s via PayPal to payments@scentra.com using Friends and Family, order ID in the note.", amount)
	default:
		return fmt.Sprintf("Send $%s using your selected payment method and include your order ID.", amount)
	}
}

func (s *service) orderCtx(ctx context.Context, orderID uuid.UUID) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithOrderID(ctx, orderID.String())
}

func (s *service) observe(outcome string, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveAttempt(outcome, time.Since(started))
}
