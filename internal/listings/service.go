package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mmattyV/scentra-backend/pkg/db/models"
	"github.com/mmattyV/scentra-backend/pkg/enums"
	pkgerrors "github.com/mmattyV/scentra-backend/pkg/errors"
)

// Service exposes seller listing management plus the public browse reads.
type Service interface {
	CreateListing(ctx context.Context, sellerID uuid.UUID, input CreateListingInput) (*models.Listing, error)
	UpdateListing(ctx context.Context, sellerID, listingID uuid.UUID, input UpdateListingInput) (*models.Listing, error)
	GetListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, *models.Fragrance, error)
	ListListings(ctx context.Context, input ListListingsInput) (*ListingListResult, error)
	ListSellerListings(ctx context.Context, sellerID uuid.UUID) ([]models.Listing, error)
}

// CreateListingInput holds the validated payload to create a listing.
type CreateListingInput struct {
	FragranceID      uuid.UUID
	BottleSize       string
	Condition        enums.ListingCondition
	PercentRemaining *int
	HasOriginalBox   bool
	BatchCode        *string
	AskingPrice      decimal.Decimal
	ImageKey         string
}

// UpdateListingInput holds optional mutation values. Price updates land
// immediately and may race an in-flight checkout; the checkout snapshot
// keeps whichever price it read.
type UpdateListingInput struct {
	BottleSize       *string
	PercentRemaining *int
	HasOriginalBox   *bool
	BatchCode        *string
	AskingPrice      *decimal.Decimal
	ImageKey         *string
}

type fragranceLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Fragrance, error)
}

type service struct {
	repo       *Repository
	fragrances fragranceLoader
}

// NewService constructs a listing service instance.
func NewService(repo *Repository, fragrances fragranceLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("listing repository required")
	}
	if fragrances == nil {
		return nil, fmt.Errorf("fragrance loader required")
	}
	return &service{repo: repo, fragrances: fragrances}, nil
}

// CreateListing validates the payload and inserts an active listing.
func (s *service) CreateListing(ctx context.Context, sellerID uuid.UUID, input CreateListingInput) (*models.Listing, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if strings.TrimSpace(input.BottleSize) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bottle_size is required")
	}
	if !input.Condition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "condition must be new or used")
	}
	if err := validateConditionDetail(input.Condition, input.PercentRemaining); err != nil {
		return nil, err
	}
	if !input.AskingPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asking_price must be positive")
	}

	if _, err := s.fragrances.FindByID(ctx, input.FragranceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "fragrance not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fragrance")
	}

	listing := &models.Listing{
		ID:               uuid.New(),
		SellerID:         sellerID,
		FragranceID:      input.FragranceID,
		BottleSize:       strings.TrimSpace(input.BottleSize),
		Condition:        input.Condition,
		PercentRemaining: input.PercentRemaining,
		HasOriginalBox:   input.HasOriginalBox,
		BatchCode:        input.BatchCode,
		AskingPrice:      input.AskingPrice.Round(2),
		ImageKey:         input.ImageKey,
		Status:           enums.ListingStatusActive,
	}
	created, err := s.repo.Create(ctx, listing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert listing")
	}
	return created, nil
}

// UpdateListing applies a partial update to a seller-owned listing. Only
// listings still in a pre-sale status accept detail edits.
func (s *service) UpdateListing(ctx context.Context, sellerID, listingID uuid.UUID, input UpdateListingInput) (*models.Listing, error) {
	listing, err := s.loadOwned(ctx, sellerID, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != enums.ListingStatusActive && listing.Status != enums.ListingStatusOnHold {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing can no longer be edited")
	}

	if input.BottleSize != nil {
		trimmed := strings.TrimSpace(*input.BottleSize)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bottle_size cannot be empty")
		}
		listing.BottleSize = trimmed
	}
	if input.PercentRemaining != nil {
		if err := validateConditionDetail(listing.Condition, input.PercentRemaining); err != nil {
			return nil, err
		}
		listing.PercentRemaining = input.PercentRemaining
	}
	if input.HasOriginalBox != nil {
		listing.HasOriginalBox = *input.HasOriginalBox
	}
	if input.BatchCode != nil {
		listing.BatchCode = input.BatchCode
	}
	if input.AskingPrice != nil {
		if !input.AskingPrice.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "asking_price must be positive")
		}
		listing.AskingPrice = input.AskingPrice.Round(2)
	}
	if input.ImageKey != nil {
		listing.ImageKey = *input.ImageKey
	}

	updated, err := s.repo.Update(ctx, listing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update listing")
	}
	return updated, nil
}

// GetListing loads a listing with its catalog entry.
func (s *service) GetListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, *models.Fragrance, error) {
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	fragrance, err := s.fragrances.FindByID(ctx, listing.FragranceID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fragrance")
	}
	return listing, fragrance, nil
}

func (s *service) ListListings(ctx context.Context, input ListListingsInput) (*ListingListResult, error) {
	result, err := s.repo.ListSummaries(ctx, input)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}
	return result, nil
}

func (s *service) ListSellerListings(ctx context.Context, sellerID uuid.UUID) ([]models.Listing, error) {
	rows, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller listings")
	}
	return rows, nil
}

func (s *service) loadOwned(ctx context.Context, sellerID, listingID uuid.UUID) (*models.Listing, error) {
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing does not belong to seller")
	}
	return listing, nil
}

func validateConditionDetail(condition enums.ListingCondition, percentRemaining *int) error {
	switch condition {
	case enums.ListingConditionUsed:
		if percentRemaining == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "percent_remaining is required for used bottles")
		}
		if *percentRemaining < 0 || *percentRemaining > 100 {
			return pkgerrors.New(pkgerrors.CodeValidation, "percent_remaining must be between 0 and 100")
		}
	case enums.ListingConditionNew:
		if percentRemaining != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "percent_remaining only applies to used bottles")
		}
	}
	return nil
}
