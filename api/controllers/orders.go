package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// OrderSession exposes the staged order and confirmation step.
type OrderSession interface {
	Orders() *orders.Lifecycle
	Confirm(ctx context.Context) (*orders.Order, error)
}

type orderResponse struct {
	Order    *orders.Order         `json:"order"`
	SubTotal decimal.Decimal       `json:"subtotal"`
	Shopper  *types.ShopperProfile `json:"shopper,omitempty"`
}

func newOrderResponse(order *orders.Order, shopper *types.ShopperProfile) orderResponse {
	return orderResponse{Order: order, SubTotal: order.SubTotal(), Shopper: shopper}
}

func OrderCurrent(sess OrderSession, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := sess.Orders().ReadStagedOrder(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order, nil))
	}
}

// OrderConfirm activates the confirmation view: it returns the staged order
// with the stored shopper details and empties the cart.
func OrderConfirm(sess OrderSession, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := sess.Confirm(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shopper, err := sess.Orders().StoredProfile(r.Context())
		if err != nil {
			logg.Warn(logg.WithOrderID(r.Context(), order.ID), "confirmation shown without shopper details")
			shopper = nil
		}
		responses.WriteSuccess(w, newOrderResponse(order, shopper))
	}
}
