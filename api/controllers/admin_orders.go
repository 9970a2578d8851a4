package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmattyV/scentra-backend/api/responses"
	"github.com/mmattyV/scentra-backend/api/validators"
	ordersvc "github.com/mmattyV/scentra-backend/internal/orders"
	"github.com/mmattyV/scentra-backend/internal/statussync"
	"github.com/mmattyV/scentra-backend/pkg/enums"
	pkgerrors "github.com/mmattyV/scentra-backend/pkg/errors"
	"github.com/mmattyV/scentra-backend/pkg/logger"
)

// AdminOrderList returns any buyer's or seller's orders with full filters.
func AdminOrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		input, err := parseOrderListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Filters.BuyerID, err = validators.ParseQueryUUID(r, "buyer_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Filters.SellerID, err = validators.ParseQueryUUID(r, "seller_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListAllOrders(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(result))
	}
}

// AdminOrderSetStatus forces an order's lifecycle status.
func AdminOrderSetStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		order, err := svc.AdminSetOrderStatus(r.Context(), orderID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminOrderSetPaymentStatus records an off-platform payment observation.
// Marking an order paid confirms its items, so the per-listing sync
// results ride along in the response.
func AdminOrderSetPaymentStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setPaymentStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParsePaymentStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status"))
			return
		}

		order, results, err := svc.SetPaymentStatus(r.Context(), orderID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, paymentStatusResponse{
			Order:       newOrderResponse(order),
			Transitions: results,
		})
	}
}

type setOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type setPaymentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type paymentStatusResponse struct {
	Order       orderResponse        `json:"order"`
	Transitions []*statussync.Result `json:"transitions,omitempty"`
}
