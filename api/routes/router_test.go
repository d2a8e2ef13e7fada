package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/shopper"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

type stubCatalog struct {
	products map[int]catalog.Product
}

func (s stubCatalog) ProductByID(_ context.Context, id int) (*catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &p, nil
}

func (s stubCatalog) List(_ context.Context, limit, skip int) (*catalog.Page, error) {
	page := &catalog.Page{Total: len(s.products), Limit: limit, Skip: skip}
	for _, p := range s.products {
		page.Products = append(page.Products, p)
	}
	return page, nil
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func newTestRouter(t *testing.T, pingers map[string]controllers.Pinger) (http.Handler, *prometheus.Registry) {
	t.Helper()
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	reg := prometheus.NewRegistry()
	m := metrics.NewStorefront(reg)
	kv := storage.NewAdapter(storage.NewMemoryStore(0), storage.NewMemoryStore(0), storage.AdapterOptions{Logger: logg, Metrics: m})
	sess := shopper.New(ctx, kv, shopper.Options{Logger: logg, Metrics: m})

	router := NewRouter(Deps{
		Config:    &config.Config{App: config.AppConfig{Env: "test"}},
		Logger:    logg,
		Session:   sess,
		SessionID: "test-session",
		Catalog: stubCatalog{products: map[int]catalog.Product{
			1: {ID: 1, Title: "Lamp", Price: decimal.RequireFromString("10"), Stock: 5},
			2: {ID: 2, Title: "Mug", Price: decimal.RequireFromString("4.995"), Stock: 1},
		}},
		Pingers:  pingers,
		Gatherer: reg,
	})
	return router, reg
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, map[string]controllers.Pinger{"db": stubPinger{}})
	code, _ := do(t, router, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, router, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, code)

	failing, _ := newTestRouter(t, map[string]controllers.Pinger{"redis": stubPinger{err: errors.New("down")}})
	code, env := do(t, failing, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, string(pkgerrors.CodeStorageUnavailable), env.Error.Code)
}

func TestCartEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	code, _ := do(t, router, http.MethodPost, "/api/v1/cart/items", `{"product_id":1,"qty":3}`)
	require.Equal(t, http.StatusCreated, code)
	code, env := do(t, router, http.MethodPost, "/api/v1/cart/items", `{"product_id":2,"qty":2}`)
	require.Equal(t, http.StatusCreated, code)

	var added struct {
		ExceedsStock bool `json:"exceeds_stock"`
		Cart         struct {
			SubTotal string `json:"subtotal"`
			Count    int    `json:"count"`
		} `json:"cart"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &added))
	assert.True(t, added.ExceedsStock)
	assert.Equal(t, "39.99", added.Cart.SubTotal)
	assert.Equal(t, 5, added.Cart.Count)

	code, env = do(t, router, http.MethodPost, "/api/v1/cart/items", `{"product_id":1,"qty":0}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, string(pkgerrors.CodeValidation), env.Error.Code)

	code, _ = do(t, router, http.MethodPost, "/api/v1/cart/items", `{"product_id":99,"qty":1}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, router, http.MethodPatch, "/api/v1/cart/items/1", `{"qty":1}`)
	assert.Equal(t, http.StatusOK, code)

	code, env = do(t, router, http.MethodDelete, "/api/v1/cart/items/42", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Product not deleted.", env.Error.Message)

	code, env = do(t, router, http.MethodDelete, "/api/v1/cart/items/1", "")
	require.Equal(t, http.StatusOK, code)
	var removed struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &removed))
	assert.Equal(t, "Product Lamp was deleted.", removed.Message)

	code, _ = do(t, router, http.MethodPut, "/api/v1/cart", `{"items":[]}`)
	assert.Equal(t, http.StatusOK, code)
	code, env = do(t, router, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, code)
	var cartBody struct {
		Items []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cartBody))
	assert.Empty(t, cartBody.Items)
}

func TestCheckoutFlow(t *testing.T) {
	router, reg := newTestRouter(t, nil)

	code, _ := do(t, router, http.MethodPost, "/api/v1/cart/items", `{"product_id":1,"qty":2}`)
	require.Equal(t, http.StatusCreated, code)

	code, env := do(t, router, http.MethodPost, "/api/v1/checkout", "")
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, checkout.Banner, env.Error.Message)
	var details struct {
		Profile map[string]string `json:"profile"`
		Payment map[string]string `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.Equal(t, "Email is required.", details.Profile["email"])
	assert.Len(t, details.Payment, 4)

	code, _ = do(t, router, http.MethodPatch, "/api/v1/checkout/billing", `{"city":"x"}`)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, router, http.MethodPatch, "/api/v1/checkout/profile", `{"nickname":"x"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, router, http.MethodPatch, "/api/v1/checkout/profile",
		`{"city":"Austin","email":"a.b@c.co","first_name":"Sam","last_name":"Lee","phone":"555","state":"TX","street_address":"1 Main","zip_code":"78701"}`)
	require.Equal(t, http.StatusOK, code)
	code, env = do(t, router, http.MethodPatch, "/api/v1/checkout/payment",
		`{"card_cvv":"123","card_number":"4111 1111 1111 1111","exp_date":"7/2026","name_on_card":"Sam Lee"}`)
	require.Equal(t, http.StatusOK, code)
	var snapshot struct {
		State   string            `json:"state"`
		Payment map[string]string `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.Equal(t, "editing", snapshot.State)
	assert.Equal(t, "**** **** **** 1111", snapshot.Payment["card_number"])

	code, _ = do(t, router, http.MethodGet, "/api/v1/orders/current", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, env = do(t, router, http.MethodPost, "/api/v1/checkout", "")
	require.Equal(t, http.StatusCreated, code)
	var committed struct {
		Order struct {
			ID            string            `json:"id"`
			TransactionID string            `json:"transaction_id"`
			Cart          []json.RawMessage `json:"cart"`
		} `json:"order"`
		SubTotal string `json:"subtotal"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &committed))
	assert.NotEmpty(t, committed.Order.ID)
	assert.Len(t, committed.Order.TransactionID, 32)
	assert.Equal(t, "20", committed.SubTotal)

	code, env = do(t, router, http.MethodPatch, "/api/v1/checkout/profile", `{"city":"Dallas"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, string(pkgerrors.CodeStateConflict), env.Error.Code)

	code, _ = do(t, router, http.MethodGet, "/api/v1/orders/current", "")
	assert.Equal(t, http.StatusOK, code)

	code, env = do(t, router, http.MethodPost, "/api/v1/orders/current/confirmation", "")
	require.Equal(t, http.StatusOK, code)
	var confirmed struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
		Shopper map[string]string `json:"shopper"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &confirmed))
	assert.Equal(t, committed.Order.ID, confirmed.Order.ID)
	assert.Equal(t, "Austin", confirmed.Shopper["city"])

	_, env = do(t, router, http.MethodGet, "/api/v1/cart", "")
	var cartBody struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cartBody))
	assert.Zero(t, cartBody.Count)

	code, env = do(t, router, http.MethodGet, "/api/v1/checkout", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.Equal(t, "editing", snapshot.State, "a fresh checkout starts after confirmation")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	assert.True(t, names["orders_committed_total"])
	assert.True(t, names["checkout_attempts_total"])
}

func TestProductsAndMetricsEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	code, _ := do(t, router, http.MethodGet, "/api/v1/products?limit=10&skip=0", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, router, http.MethodGet, "/api/v1/products?limit=1000", "")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, router, http.MethodGet, "/api/v1/products/2", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, router, http.MethodGet, "/api/v1/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, code)

	do(t, router, http.MethodPost, "/api/v1/cart/items", `{"product_id":1,"qty":1}`)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cart_mutations_total{op="add"} 1`)
}
