package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

// CartService is the cart surface the HTTP layer drives.
type CartService interface {
	Current() []cart.Line
	SubTotal() decimal.Decimal
	Count() int
	Degraded() bool
	ReplaceAll(ctx context.Context, lines []cart.Line) error
	AddOrMerge(ctx context.Context, candidate cart.Line, qty int) (cart.Line, error)
	SetQty(ctx context.Context, id, qty int) (bool, error)
	Remove(ctx context.Context, id int) (string, error)
}

// ProductLookup resolves catalog products.
type ProductLookup interface {
	ProductByID(ctx context.Context, id int) (*catalog.Product, error)
	List(ctx context.Context, limit, skip int) (*catalog.Page, error)
}

type cartResponse struct {
	Items    []cart.Line     `json:"items"`
	SubTotal decimal.Decimal `json:"subtotal"`
	Count    int             `json:"count"`
	Degraded bool            `json:"degraded"`
}

func newCartResponse(svc CartService) cartResponse {
	return cartResponse{
		Items:    svc.Current(),
		SubTotal: svc.SubTotal(),
		Count:    svc.Count(),
		Degraded: svc.Degraded(),
	}
}

type replaceCartRequest struct {
	Items []cart.Line `json:"items" validate:"required"`
}

type addItemRequest struct {
	ProductID int `json:"product_id" validate:"required,min=1"`
	Qty       int `json:"qty" validate:"required,min=1"`
}

type setQtyRequest struct {
	Qty int `json:"qty" validate:"required,min=1"`
}

func CartGet(svc CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newCartResponse(svc))
	}
}

func CartReplace(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload replaceCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.ReplaceAll(r.Context(), payload.Items); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(svc))
	}
}

// CartAddItem looks the product up in the catalog and merges it into the cart.
func CartAddItem(svc CartService, products ProductLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := products.ProductByID(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		line, err := svc.AddOrMerge(r.Context(), cart.FromProduct(*product), payload.Qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"line":          line,
			"exceeds_stock": line.ExceedsStock(),
			"cart":          newCartResponse(svc),
		})
	}
}

func CartSetQty(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload setQtyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		found, err := svc.SetQty(r.Context(), id, payload.Qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"updated": found,
			"cart":    newCartResponse(svc),
		})
	}
}

func CartRemoveItem(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		title, err := svc.Remove(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message": cart.RemovedMessage(title),
			"cart":    newCartResponse(svc),
		})
	}
}
