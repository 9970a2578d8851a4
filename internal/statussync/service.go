package statussync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mmattyV/scentra-backend/pkg/db/models"
	"github.com/mmattyV/scentra-backend/pkg/enums"
	pkgerrors "github.com/mmattyV/scentra-backend/pkg/errors"
	"github.com/mmattyV/scentra-backend/pkg/logger"
	"github.com/mmattyV/scentra-backend/pkg/metrics"
	"github.com/mmattyV/scentra-backend/pkg/outbox"
	"github.com/mmattyV/scentra-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type listingStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	UpdateStatusIf(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected, target enums.ListingStatus) (bool, error)
}

type orderItemStore interface {
	ListItemsByListing(ctx context.Context, listingID uuid.UUID) ([]models.OrderItem, error)
	UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status enums.ListingStatus) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service moves listings through the fulfillment state machine and mirrors
// each shared-vocabulary transition onto the order items that snapshot the
// listing.
type Service struct {
	tx       txRunner
	listings listingStore
	items    orderItemStore
	outbox   outboxPublisher
	metrics  *metrics.StatusSyncMetrics
	logg     *logger.Logger
}

// NewService builds the status sync service.
func NewService(tx txRunner, listings listingStore, items orderItemStore, publisher outboxPublisher, m *metrics.StatusSyncMetrics, logg *logger.Logger) (*Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if listings == nil {
		return nil, fmt.Errorf("listing store required")
	}
	if items == nil {
		return nil, fmt.Errorf("order item store required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &Service{
		tx:       tx,
		listings: listings,
		items:    items,
		outbox:   publisher,
		metrics:  m,
		logg:     logg,
	}, nil
}

// Transition validates the move against the transition table, flips the
// listing with a guarded update, then fans the new status out to order
// items. The listing flip and its outbox event commit together; the
// fan-out is best-effort and its outcome lands in the returned Result.
// A CodePropagation error means the listing changed but the fan-out could
// not be enumerated; the transition itself is never rolled back.
func (s *Service) Transition(ctx context.Context, listingID uuid.UUID, target enums.ListingStatus) (*Result, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown listing status %q", target))
	}

	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	from := listing.Status
	if !from.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot transition listing from %s to %s", from, target))
	}

	if err := s.commitListingFlip(ctx, listing, from, target); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncTransition(target.String())
	}

	result := &Result{
		ListingID:   listingID,
		From:        from,
		To:          target,
		CompletedAt: time.Now().UTC(),
	}
	if !target.PropagatesToOrderItems() {
		return result, nil
	}

	items, err := s.items.ListItemsByListing(ctx, listingID)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncPropagationFailure(target.String())
		}
		if s.logg != nil {
			s.logg.Error(s.logg.WithListingID(ctx, listingID.String()), "status fan-out enumeration failed", err)
		}
		return result, pkgerrors.Wrap(pkgerrors.CodePropagation, err, "list order items for listing")
	}

	for _, item := range items {
		outcome := ItemOutcome{OrderItemID: item.ID, OrderID: item.OrderID}
		if item.Status == target {
			outcome.Updated = true
			result.ItemsUpdated++
			result.Items = append(result.Items, outcome)
			continue
		}
		if err := s.items.UpdateItemStatus(ctx, item.ID, target); err != nil {
			outcome.Error = err.Error()
			result.ItemsFailed++
			if s.metrics != nil {
				s.metrics.IncPropagationFailure(target.String())
			}
			if s.logg != nil {
				lctx := s.logg.WithListingID(ctx, listingID.String())
				lctx = s.logg.WithOrderID(lctx, item.OrderID.String())
				s.logg.Error(lctx, "order item status propagation failed", err)
			}
		} else {
			outcome.Updated = true
			result.ItemsUpdated++
		}
		result.Items = append(result.Items, outcome)
	}
	result.CompletedAt = time.Now().UTC()

	return result, nil
}

// TransitionForSeller applies a seller-initiated transition: releasing a
// hold back to active, or taking the listing down. Everything else in the
// pipeline belongs to checkout, payment, or admin fulfillment.
func (s *Service) TransitionForSeller(ctx context.Context, sellerID, listingID uuid.UUID, target enums.ListingStatus) (*Result, error) {
	if target != enums.ListingStatusActive && target != enums.ListingStatusRemoved {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sellers may only release holds or remove listings")
	}

	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing does not belong to seller")
	}

	return s.Transition(ctx, listingID, target)
}

// Reserve flips an active listing to on_hold for checkout. A false guard
// means another buyer won the race; the caller treats that as a conflict.
func (s *Service) Reserve(ctx context.Context, listingID uuid.UUID) error {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.Status != enums.ListingStatusActive {
		return pkgerrors.New(pkgerrors.CodeConflict, "listing is not available")
	}

	if err := s.commitListingFlip(ctx, listing, enums.ListingStatusActive, enums.ListingStatusOnHold); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.IncTransition(enums.ListingStatusOnHold.String())
	}
	return nil
}

// Release reverts a checkout hold, returning the listing to active and
// recording which order gave it back.
func (s *Service) Release(ctx context.Context, listingID, orderID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.listings.UpdateStatusIf(ctx, tx, listingID, enums.ListingStatusOnHold, enums.ListingStatusActive)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: release listing hold")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "listing is no longer on hold")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventReservationReleased,
			AggregateType: enums.AggregateListing,
			AggregateID:   listingID,
			Data: payloads.ReservationReleasedEvent{
				ListingID:  listingID,
				OrderID:    orderID,
				ReleasedAt: time.Now().UTC(),
			},
			Version: 1,
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.IncTransition(enums.ListingStatusActive.String())
	}
	return nil
}

func (s *Service) commitListingFlip(ctx context.Context, listing *models.Listing, from, target enums.ListingStatus) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.listings.UpdateStatusIf(ctx, tx, listing.ID, from, target)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update listing status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "listing status changed concurrently")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventListingStatusChanged,
			AggregateType: enums.AggregateListing,
			AggregateID:   listing.ID,
			Data: payloads.ListingStatusChangedEvent{
				ListingID:  listing.ID,
				SellerID:   listing.SellerID,
				FromStatus: from,
				ToStatus:   target,
				ChangedAt:  time.Now().UTC(),
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		if target == enums.ListingStatusRemoved {
			removed := outbox.DomainEvent{
				EventType:     enums.EventListingRemoved,
				AggregateType: enums.AggregateListing,
				AggregateID:   listing.ID,
				Data: payloads.ListingRemovedEvent{
					ListingID: listing.ID,
					SellerID:  listing.SellerID,
					RemovedAt: time.Now().UTC(),
				},
				Version: 1,
			}
			return s.outbox.EmitIfNotExists(ctx, tx, removed)
		}
		return nil
	})
}
