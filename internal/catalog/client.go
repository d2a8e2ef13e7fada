package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	defaultBaseURL              = "https://dummyjson.com"
	defaultTimeout              = 10 * time.Second
	responseBodyReadLimit int64 = 1024
)

// Client reads products from a dummyjson-compatible catalog API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the catalog base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Product is the catalog's product shape.
type Product struct {
	ID                  int             `json:"id"`
	Title               string          `json:"title"`
	SKU                 string          `json:"sku"`
	Price               decimal.Decimal `json:"price"`
	Stock               int             `json:"stock"`
	Thumbnail           string          `json:"thumbnail"`
	Brand               string          `json:"brand"`
	Description         string          `json:"description"`
	Images              []string        `json:"images"`
	ReturnPolicy        string          `json:"returnPolicy"`
	WarrantyInformation string          `json:"warrantyInformation"`
	Category            string          `json:"category"`
	Rating              float64         `json:"rating"`
	DiscountPercentage  float64         `json:"discountPercentage"`
}

// Page is one slice of the product listing.
type Page struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// ProductByID fetches a single product. An unknown id is NOT_FOUND.
func (c *Client) ProductByID(ctx context.Context, id int) (*Product, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog client not configured")
	}
	if id < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}

	var product Product
	if err := c.getJSON(ctx, c.buildURL("products/"+strconv.Itoa(id)), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns up to limit products starting after skip.
func (c *Client) List(ctx context.Context, limit, skip int) (*Page, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog client not configured")
	}
	if limit < 0 || skip < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "limit and skip must not be negative")
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("skip", strconv.Itoa(skip))

	var page Page
	if err := c.getJSON(ctx, c.buildURL("products")+"?"+query.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build catalog request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute catalog request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "catalog request failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode catalog response")
	}
	return nil
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
