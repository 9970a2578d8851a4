package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmattyV/scentra-backend/pkg/config"
	"github.com/mmattyV/scentra-backend/pkg/db/models"
	"github.com/mmattyV/scentra-backend/pkg/enums"
	pkgerrors "github.com/mmattyV/scentra-backend/pkg/errors"
	"github.com/mmattyV/scentra-backend/pkg/logger"
)

// Service exposes the per-buyer cart operations.
type Service interface {
	Get(ctx context.Context, buyerID uuid.UUID) (*Cart, error)
	Add(ctx context.Context, buyerID, listingID uuid.UUID) (*Cart, error)
	Remove(ctx context.Context, buyerID, listingID uuid.UUID) (*Cart, error)
	Clear(ctx context.Context, buyerID uuid.UUID) error
	Validate(ctx context.Context, buyerID uuid.UUID) (*ValidationResult, error)
}

type listingReader interface {
	GetListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, *models.Fragrance, error)
}

type service struct {
	store    Store
	listings listingReader
	cfg      config.CartConfig
	logg     *logger.Logger
}

// NewService constructs a cart service instance.
func NewService(store Store, listings listingReader, cfg config.CartConfig, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if listings == nil {
		return nil, fmt.Errorf("listing reader required")
	}
	return &service{store: store, listings: listings, cfg: cfg, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, buyerID uuid.UUID) (*Cart, error) {
	cart, err := s.store.Load(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

// Add snapshots the listing into the buyer's cart. Each listing is a
// one-of-a-kind bottle, so quantity is always one and duplicates are
// rejected.
func (s *service) Add(ctx context.Context, buyerID, listingID uuid.UUID) (*Cart, error) {
	listing, fragrance, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID == buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot add your own listing")
	}
	if listing.Status != enums.ListingStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "listing is not available")
	}

	cart, err := s.store.Load(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if cart.FindItem(listingID) >= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "listing already in cart")
	}
	if s.cfg.MaxItems > 0 && len(cart.Items) >= s.cfg.MaxItems {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("cart is limited to %d items", s.cfg.MaxItems))
	}

	cart.Items = append(cart.Items, Item{
		ID:               uuid.New(),
		ListingID:        listing.ID,
		SellerID:         listing.SellerID,
		FragranceName:    fragrance.Name,
		Brand:            fragrance.Brand,
		BottleSize:       listing.BottleSize,
		Condition:        listing.Condition,
		PercentRemaining: listing.PercentRemaining,
		ImageKey:         listing.ImageKey,
		OriginalPrice:    listing.AskingPrice,
		CurrentPrice:     listing.AskingPrice,
		IsAvailable:      true,
		AddedAt:          time.Now().UTC(),
	})

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return cart, nil
}

func (s *service) Remove(ctx context.Context, buyerID, listingID uuid.UUID) (*Cart, error) {
	cart, err := s.store.Load(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	idx := cart.FindItem(listingID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not in cart")
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return cart, nil
}

func (s *service) Clear(ctx context.Context, buyerID uuid.UUID) error {
	if err := s.store.Delete(ctx, buyerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// Validate re-reads every listing and refreshes availability and price
// flags in place. It never mutates listings; the flags exist so the buyer
// sees drift before checkout re-checks everything authoritatively.
func (s *service) Validate(ctx context.Context, buyerID uuid.UUID) (*ValidationResult, error) {
	cart, err := s.store.Load(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	changed := false
	for i := range cart.Items {
		item := &cart.Items[i]

		listing, _, err := s.listings.GetListing(ctx, item.ListingID)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				if item.IsAvailable {
					item.IsAvailable = false
					changed = true
				}
				continue
			}
			return nil, err
		}

		available := listing.Status == enums.ListingStatusActive
		if item.IsAvailable != available {
			item.IsAvailable = available
			changed = true
		}

		if !listing.AskingPrice.Equal(item.OriginalPrice) {
			if !item.PriceChanged || !item.CurrentPrice.Equal(listing.AskingPrice) {
				changed = true
			}
			item.PriceChanged = true
			item.CurrentPrice = listing.AskingPrice
		} else if item.PriceChanged {
			item.PriceChanged = false
			item.CurrentPrice = listing.AskingPrice
			changed = true
		}
	}

	if changed {
		if err := s.store.Save(ctx, cart); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
		}
	}
	return &ValidationResult{Cart: cart, Changed: changed}, nil
}
