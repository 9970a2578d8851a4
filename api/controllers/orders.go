package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmattyV/scentra-backend/api/middleware"
	"github.com/mmattyV/scentra-backend/api/responses"
	"github.com/mmattyV/scentra-backend/api/validators"
	ordersvc "github.com/mmattyV/scentra-backend/internal/orders"
	"github.com/mmattyV/scentra-backend/pkg/db/models"
	"github.com/mmattyV/scentra-backend/pkg/enums"
	pkgerrors "github.com/mmattyV/scentra-backend/pkg/errors"
	"github.com/mmattyV/scentra-backend/pkg/logger"
	"github.com/mmattyV/scentra-backend/pkg/pagination"
	"github.com/mmattyV/scentra-backend/pkg/types"
)

// OrderList returns the caller's own orders, newest first.
func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.ListBuyerOrders(r.Context(), middleware.UserIDFromContext(r.Context()), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(result))
	}
}

// OrderGet returns one order, access-checked against the caller's role.
func OrderGet(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		ctx := r.Context()
		order, err := svc.GetOrder(ctx, middleware.UserIDFromContext(ctx), middleware.RoleFromContext(ctx), orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderCancel lets a buyer back out while the order is still pending.
func OrderCancel(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CancelOwnOrder(r.Context(), middleware.UserIDFromContext(r.Context()), orderID, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

func parseOrderListInput(r *http.Request) (*ordersvc.ListOrdersInput, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return nil, err
	}

	input := ordersvc.ListOrdersInput{
		Pagination: pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		},
	}

	if raw := validators.SanitizeString(r.URL.Query().Get("status"), maxQueryParamLen); raw != "" {
		status, parseErr := enums.ParseOrderStatus(raw)
		if parseErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter")
		}
		input.Filters.OrderStatus = &status
	}
	if raw := validators.SanitizeString(r.URL.Query().Get("payment_status"), maxQueryParamLen); raw != "" {
		status, parseErr := enums.ParsePaymentStatus(raw)
		if parseErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid payment status filter")
		}
		input.Filters.PaymentStatus = &status
	}

	return &input, nil
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type orderResponse struct {
	ID                  uuid.UUID           `json:"id"`
	BuyerID             uuid.UUID           `json:"buyer_id"`
	ShippingAddress     types.Address       `json:"shipping_address"`
	Subtotal            decimal.Decimal     `json:"subtotal"`
	Total               decimal.Decimal     `json:"total"`
	PaymentStatus       enums.PaymentStatus `json:"payment_status"`
	OrderStatus         enums.OrderStatus   `json:"order_status"`
	PaymentMethod       enums.PaymentMethod `json:"payment_method"`
	PaymentInstructions string              `json:"payment_instructions,omitempty"`
	Notes               *string             `json:"notes,omitempty"`
	Items               []orderItemResponse `json:"items"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

type orderItemResponse struct {
	ID               uuid.UUID              `json:"id"`
	ListingID        uuid.UUID              `json:"listing_id"`
	SellerID         uuid.UUID              `json:"seller_id"`
	FragranceName    string                 `json:"fragrance_name"`
	Brand            string                 `json:"brand"`
	BottleSize       string                 `json:"bottle_size"`
	Condition        enums.ListingCondition `json:"condition"`
	PercentRemaining *int                   `json:"percent_remaining,omitempty"`
	Price            decimal.Decimal        `json:"price"`
	ImageURL         string                 `json:"image_url,omitempty"`
	Status           enums.ListingStatus    `json:"status"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

type orderListResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:               item.ID,
			ListingID:        item.ListingID,
			SellerID:         item.SellerID,
			FragranceName:    item.FragranceName,
			Brand:            item.Brand,
			BottleSize:       item.BottleSize,
			Condition:        item.Condition,
			PercentRemaining: item.PercentRemaining,
			Price:            item.Price,
			ImageURL:         item.ImageURL,
			Status:           item.Status,
			CreatedAt:        item.CreatedAt,
			UpdatedAt:        item.UpdatedAt,
		})
	}

	return orderResponse{
		ID:                  order.ID,
		BuyerID:             order.BuyerID,
		ShippingAddress:     order.ShippingAddress,
		Subtotal:            order.Subtotal,
		Total:               order.Total,
		PaymentStatus:       order.PaymentStatus,
		OrderStatus:         order.OrderStatus,
		PaymentMethod:       order.PaymentMethod,
		PaymentInstructions: order.PaymentInstructions,
		Notes:               order.Notes,
		Items:               items,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
}

func newOrderListResponse(result *ordersvc.OrderListResult) orderListResponse {
	orders := make([]orderResponse, 0, len(result.Orders))
	for i := range result.Orders {
		orders = append(orders, newOrderResponse(&result.Orders[i]))
	}
	return orderListResponse{Orders: orders, NextCursor: result.NextCursor}
}
