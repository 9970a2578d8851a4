package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mmattyV/scentra-backend/internal/statussync"
	"github.com/mmattyV/scentra-backend/pkg/db/models"
	"github.com/mmattyV/scentra-backend/pkg/enums"
	pkgerrors "github.com/mmattyV/scentra-backend/pkg/errors"
	"github.com/mmattyV/scentra-backend/pkg/logger"
	"github.com/mmattyV/scentra-backend/pkg/outbox"
	"github.com/mmattyV/scentra-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type listingTransitioner interface {
	Transition(ctx context.Context, listingID uuid.UUID, target enums.ListingStatus) (*statussync.Result, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes post-checkout order management. Order status has two
// capability views over the same column: buyers get the restricted
// self-service table, admins force any valid status.
type Service interface {
	GetOrder(ctx context.Context, actorID uuid.UUID, role enums.UserRole, orderID uuid.UUID) (*models.Order, error)
	ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, input ListOrdersInput) (*OrderListResult, error)
	ListAllOrders(ctx context.Context, input ListOrdersInput) (*OrderListResult, error)
	AdminSetOrderStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error)
	CancelOwnOrder(ctx context.Context, buyerID, orderID uuid.UUID, reason string) (*models.Order, error)
	SetPaymentStatus(ctx context.Context, orderID uuid.UUID, target enums.PaymentStatus) (*models.Order, []*statussync.Result, error)
}

type orderStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, input ListOrdersInput) (*OrderListResult, error)
	UpdateOrderStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.PaymentStatus) error
}

type service struct {
	repo   orderStore
	tx     txRunner
	sync   listingTransitioner
	outbox outboxPublisher
	logg   *logger.Logger
}

// NewService constructs an order service instance.
func NewService(repo orderStore, tx txRunner, sync listingTransitioner, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if sync == nil {
		return nil, fmt.Errorf("status sync required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, sync: sync, outbox: publisher, logg: logg}, nil
}

// GetOrder loads an order. Buyers only see their own; admins see all.
func (s *service) GetOrder(ctx context.Context, actorID uuid.UUID, role enums.UserRole, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if role != enums.UserRoleAdmin && order.BuyerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
	}
	return order, nil
}

func (s *service) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, input ListOrdersInput) (*OrderListResult, error) {
	input.Filters.BuyerID = &buyerID
	return s.list(ctx, input)
}

func (s *service) ListAllOrders(ctx context.Context, input ListOrdersInput) (*OrderListResult, error) {
	return s.list(ctx, input)
}

// AdminSetOrderStatus force-sets the lifecycle status, bypassing the
// self-service transition table. Only self-transitions are refused.
func (s *service) AdminSetOrderStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", target))
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	from := order.OrderStatus
	if from == target {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already has that status")
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdateOrderStatus(ctx, tx, orderID, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:    orderID,
				BuyerID:    order.BuyerID,
				FromStatus: from,
				ToStatus:   target,
				Forced:     true,
			},
			Version: 1,
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set order status")
	}

	order.OrderStatus = target
	return order, nil
}

// CancelOwnOrder is the buyer self-service path, restricted to the
// transition table (cancel is reachable from every live status).
func (s *service) CancelOwnOrder(ctx context.Context, buyerID, orderID uuid.UUID, reason string) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
	}
	from := order.OrderStatus
	if !from.CanTransitionTo(enums.OrderStatusCancelled) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot cancel order in status %s", from))
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdateOrderStatus(ctx, tx, orderID, enums.OrderStatusCancelled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: cancel order")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Data: payloads.OrderCancelledEvent{
				OrderID:     orderID,
				BuyerID:     buyerID,
				CancelledAt: time.Now().UTC(),
				Reason:      reason,
			},
			Version: 1,
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}

	order.OrderStatus = enums.OrderStatusCancelled
	return order, nil
}

// SetPaymentStatus moves the unordered payment flag. Marking an order paid
// is the one cross-aggregate trigger: every item's listing transitions to
// unconfirmed, and the per-listing outcomes come back with the order.
func (s *service) SetPaymentStatus(ctx context.Context, orderID uuid.UUID, target enums.PaymentStatus) (*models.Order, []*statussync.Result, error) {
	if !target.IsValid() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment status %q", target))
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	from := order.PaymentStatus
	if from == target {
		return order, nil, nil
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdatePaymentStatus(ctx, tx, orderID, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update payment status")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Data: payloads.PaymentStatusChangedEvent{
				OrderID:    orderID,
				BuyerID:    order.BuyerID,
				FromStatus: from,
				ToStatus:   target,
			},
			Version: 1,
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, nil, err
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set payment status")
	}
	order.PaymentStatus = target

	if target != enums.PaymentStatusPaid {
		return order, nil, nil
	}

	results := make([]*statussync.Result, 0, len(order.Items))
	for _, item := range order.Items {
		result, err := s.sync.Transition(ctx, item.ListingID, enums.ListingStatusUnconfirmed)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodePropagation {
				// listing flipped, fan-out incomplete; keep going
				results = append(results, result)
				continue
			}
			if s.logg != nil {
				lctx := s.logg.WithOrderID(ctx, orderID.String())
				lctx = s.logg.WithListingID(lctx, item.ListingID.String())
				s.logg.Error(lctx, "paid sync: listing transition failed", err)
			}
			results = append(results, &statussync.Result{
				ListingID:   item.ListingID,
				To:          enums.ListingStatusUnconfirmed,
				ItemsFailed: 1,
				Items: []statussync.ItemOutcome{{
					OrderItemID: item.ID,
					OrderID:     orderID,
					Error:       err.Error(),
				}},
			})
			continue
		}
		results = append(results, result)
	}

	return order, results, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) list(ctx context.Context, input ListOrdersInput) (*OrderListResult, error) {
	result, err := s.repo.List(ctx, input)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return result, nil
}
