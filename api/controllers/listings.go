package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmattyV/scentra-backend/api/middleware"
	"github.com/mmattyV/scentra-backend/api/responses"
	"github.com/mmattyV/scentra-backend/api/validators"
	listingsvc "github.com/mmattyV/scentra-backend/internal/listings"
	"github.com/mmattyV/scentra-backend/internal/statussync"
	"github.com/mmattyV/scentra-backend/pkg/db/models"
	"github.com/mmattyV/scentra-backend/pkg/enums"
	pkgerrors "github.com/mmattyV/scentra-backend/pkg/errors"
	"github.com/mmattyV/scentra-backend/pkg/logger"
	"github.com/mmattyV/scentra-backend/pkg/pagination"
)

// maxQueryParamLen bounds free-text query parameters before they reach
// enum parsing or search filters.
const maxQueryParamLen = 64

// ListingBrowse handles the public marketplace browse query.
func ListingBrowse(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		input, err := parseBrowseInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListListings(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func parseBrowseInput(r *http.Request) (*listingsvc.ListListingsInput, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return nil, err
	}

	input := listingsvc.ListListingsInput{
		Pagination: pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		},
	}

	if raw := validators.SanitizeString(r.URL.Query().Get("status"), maxQueryParamLen); raw != "" {
		status, parseErr := enums.ParseListingStatus(raw)
		if parseErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter")
		}
		input.Filters.Status = &status
	}
	if raw := validators.SanitizeString(r.URL.Query().Get("condition"), maxQueryParamLen); raw != "" {
		condition, parseErr := enums.ParseListingCondition(raw)
		if parseErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid condition filter")
		}
		input.Filters.Condition = &condition
	}

	if input.Filters.SellerID, err = validators.ParseQueryUUID(r, "seller_id"); err != nil {
		return nil, err
	}
	if input.Filters.FragranceID, err = validators.ParseQueryUUID(r, "fragrance_id"); err != nil {
		return nil, err
	}
	if input.Filters.PriceMin, err = validators.ParseQueryDecimal(r, "price_min"); err != nil {
		return nil, err
	}
	if input.Filters.PriceMax, err = validators.ParseQueryDecimal(r, "price_max"); err != nil {
		return nil, err
	}
	input.Filters.Query = validators.SanitizeString(r.URL.Query().Get("q"), maxQueryParamLen)

	return &input, nil
}

// ListingGet returns a single listing joined with its catalog entry.
func ListingGet(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		listingID, err := validators.ParsePathUUID(chi.URLParam(r, "listingId"), "listing id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, fragrance, err := svc.GetListing(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newListingDetailResponse(listing, fragrance))
	}
}

// ListingCreate handles a seller posting a bottle for sale.
func ListingCreate(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		sellerID := middleware.UserIDFromContext(r.Context())

		var payload createListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		condition, err := enums.ParseListingCondition(payload.Condition)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition"))
			return
		}

		listing, err := svc.CreateListing(r.Context(), sellerID, listingsvc.CreateListingInput{
			FragranceID:      payload.FragranceID,
			BottleSize:       payload.BottleSize,
			Condition:        condition,
			PercentRemaining: payload.PercentRemaining,
			HasOriginalBox:   payload.HasOriginalBox,
			BatchCode:        payload.BatchCode,
			AskingPrice:      payload.AskingPrice,
			ImageKey:         payload.ImageKey,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newListingResponse(listing))
	}
}

// ListingUpdate handles a seller editing listing attributes.
func ListingUpdate(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		sellerID := middleware.UserIDFromContext(r.Context())
		listingID, err := validators.ParsePathUUID(chi.URLParam(r, "listingId"), "listing id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.UpdateListing(r.Context(), sellerID, listingID, listingsvc.UpdateListingInput{
			BottleSize:       payload.BottleSize,
			PercentRemaining: payload.PercentRemaining,
			HasOriginalBox:   payload.HasOriginalBox,
			BatchCode:        payload.BatchCode,
			AskingPrice:      payload.AskingPrice,
			ImageKey:         payload.ImageKey,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newListingResponse(listing))
	}
}

// SellerListings returns every listing owned by the caller, all statuses.
func SellerListings(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		sellerID := middleware.UserIDFromContext(r.Context())
		rows, err := svc.ListSellerListings(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]listingResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newListingResponse(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{"listings": out})
	}
}

type sellerTransitioner interface {
	TransitionForSeller(ctx context.Context, sellerID, listingID uuid.UUID, target enums.ListingStatus) (*statussync.Result, error)
}

// ListingStatusChange applies a seller-initiated status transition and
// mirrors it onto any order items snapshotting the listing.
func ListingStatusChange(sync sellerTransitioner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sync == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "status sync service unavailable"))
			return
		}

		sellerID := middleware.UserIDFromContext(r.Context())
		listingID, err := validators.ParsePathUUID(chi.URLParam(r, "listingId"), "listing id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload changeListingStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseListingStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		result, err := sync.TransitionForSeller(r.Context(), sellerID, listingID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type createListingRequest struct {
	FragranceID      uuid.UUID       `json:"fragrance_id" validate:"required"`
	BottleSize       string          `json:"bottle_size" validate:"required"`
	Condition        string          `json:"condition" validate:"required"`
	PercentRemaining *int            `json:"percent_remaining"`
	HasOriginalBox   bool            `json:"has_original_box"`
	BatchCode        *string         `json:"batch_code"`
	AskingPrice      decimal.Decimal `json:"asking_price" validate:"required"`
	ImageKey         string          `json:"image_key"`
}

type updateListingRequest struct {
	BottleSize       *string          `json:"bottle_size"`
	PercentRemaining *int             `json:"percent_remaining"`
	HasOriginalBox   *bool            `json:"has_original_box"`
	BatchCode        *string          `json:"batch_code"`
	AskingPrice      *decimal.Decimal `json:"asking_price"`
	ImageKey         *string          `json:"image_key"`
}

type changeListingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type listingResponse struct {
	ID               uuid.UUID              `json:"id"`
	SellerID         uuid.UUID              `json:"seller_id"`
	FragranceID      uuid.UUID              `json:"fragrance_id"`
	BottleSize       string                 `json:"bottle_size"`
	Condition        enums.ListingCondition `json:"condition"`
	PercentRemaining *int                   `json:"percent_remaining,omitempty"`
	HasOriginalBox   bool                   `json:"has_original_box"`
	BatchCode        *string                `json:"batch_code,omitempty"`
	AskingPrice      decimal.Decimal        `json:"asking_price"`
	ImageKey         string                 `json:"image_key,omitempty"`
	Status           enums.ListingStatus    `json:"status"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

type listingDetailResponse struct {
	listingResponse
	Fragrance fragranceResponse `json:"fragrance"`
}

func newListingResponse(row *models.Listing) listingResponse {
	return listingResponse{
		ID:               row.ID,
		SellerID:         row.SellerID,
		FragranceID:      row.FragranceID,
		BottleSize:       row.BottleSize,
		Condition:        row.Condition,
		PercentRemaining: row.PercentRemaining,
		HasOriginalBox:   row.HasOriginalBox,
		BatchCode:        row.BatchCode,
		AskingPrice:      row.AskingPrice,
		ImageKey:         row.ImageKey,
		Status:           row.Status,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

func newListingDetailResponse(listing *models.Listing, fragrance *models.Fragrance) listingDetailResponse {
	return listingDetailResponse{
		listingResponse: newListingResponse(listing),
		Fragrance:       newFragranceResponse(fragrance),
	}
}
