package controllers

import (
	"net/http"

	"github.com/mmattyV/scentra-backend/api/middleware"
	"github.com/mmattyV/scentra-backend/api/responses"
	"github.com/mmattyV/scentra-backend/api/validators"
	checkoutsvc "github.com/mmattyV/scentra-backend/internal/checkout"
	pkgerrors "github.com/mmattyV/scentra-backend/pkg/errors"
	"github.com/mmattyV/scentra-backend/pkg/logger"
)

// Checkout converts the buyer's cart into an order. A conflict response
// names the items that were lost to other buyers; the cart survives so
// the buyer can retry after revalidating.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutsvc.CreateOrderInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), middleware.UserIDFromContext(r.Context()), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}
