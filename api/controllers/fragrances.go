package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mmattyV/scentra-backend/api/responses"
	"github.com/mmattyV/scentra-backend/api/validators"
	fragrancesvc "github.com/mmattyV/scentra-backend/internal/fragrances"
	"github.com/mmattyV/scentra-backend/pkg/db/models"
	pkgerrors "github.com/mmattyV/scentra-backend/pkg/errors"
	"github.com/mmattyV/scentra-backend/pkg/logger"
	"github.com/mmattyV/scentra-backend/pkg/pagination"
)

// FragranceSearch handles catalog lookup by name or brand fragment.
func FragranceSearch(svc fragrancesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fragrance service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := validators.SanitizeString(r.URL.Query().Get("q"), maxQueryParamLen)
		rows, err := svc.SearchFragrances(r.Context(), query, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]fragranceResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newFragranceResponse(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{"fragrances": out})
	}
}

// FragranceGet returns a single catalog entry.
func FragranceGet(svc fragrancesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fragrance service unavailable"))
			return
		}

		fragranceID, err := validators.ParsePathUUID(chi.URLParam(r, "fragranceId"), "fragrance id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.GetFragrance(r.Context(), fragranceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newFragranceResponse(row))
	}
}

// FragranceCreate handles admin creation of catalog entries.
func FragranceCreate(svc fragrancesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fragrance service unavailable"))
			return
		}

		var payload createFragranceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.CreateFragrance(r.Context(), fragrancesvc.CreateFragranceInput{
			Name:        payload.Name,
			Brand:       payload.Brand,
			Description: payload.Description,
			ImageKey:    payload.ImageKey,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newFragranceResponse(row))
	}
}

type createFragranceRequest struct {
	Name        string  `json:"name" validate:"required"`
	Brand       string  `json:"brand" validate:"required"`
	Description *string `json:"description"`
	ImageKey    string  `json:"image_key"`
}

type fragranceResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	Description *string   `json:"description,omitempty"`
	ImageKey    string    `json:"image_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newFragranceResponse(row *models.Fragrance) fragranceResponse {
	return fragranceResponse{
		ID:          row.ID,
		Name:        row.Name,
		Brand:       row.Brand,
		Description: row.Description,
		ImageKey:    row.ImageKey,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
