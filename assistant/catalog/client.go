package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/shopmate-assistant/assistant/contract"
)

const (
	defaultBaseURL       = "https://dummyjson.com"
	maxResponseSizeBytes = 4 << 20
)

type Config struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://dummyjson.com"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// Option customizes the Client.
type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// Client talks to the product catalog service (DummyJSON-shaped API).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid catalog base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// catalogProduct is the wire shape of one DummyJSON product.
type catalogProduct struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

type productListResponse struct {
	Products []catalogProduct `json:"products"`
}

func (p catalogProduct) toContract() contractx.Product {
	return contractx.Product{
		ID:          strconv.FormatInt(p.ID, 10),
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
	}
}

// Find resolves a product-name query to the first catalog entry whose
// title contains the query, case-insensitively. Both a miss and an
// unreachable catalog surface as contract.ErrNotFound so the caller
// renders "not found" instead of a fault.
func (c *Client) Find(ctx context.Context, query string) (*contractx.Product, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("%w: empty query", contractx.ErrNotFound)
	}

	products, err := c.Search(ctx, q)
	if err != nil {
		log.Warn().Err(err).Str("query", q).Msg("catalog lookup failed")
		return nil, fmt.Errorf("%w: query=%q", contractx.ErrNotFound, q)
	}

	needle := strings.ToLower(q)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			return &p, nil
		}
	}
	// The remote search matches on more fields than the title; fall
	// back to its top hit so near-miss titles still resolve.
	if len(products) > 0 {
		return &products[0], nil
	}
	return nil, fmt.Errorf("%w: query=%q", contractx.ErrNotFound, q)
}

// Search queries the catalog's search endpoint.
func (c *Client) Search(ctx context.Context, query string) ([]contractx.Product, error) {
	endpoint := c.baseURL + "/products/search?q=" + url.QueryEscape(query)
	return c.fetchList(ctx, endpoint)
}

// List fetches the product listing, capped at limit when positive.
func (c *Client) List(ctx context.Context, limit int) ([]contractx.Product, error) {
	endpoint := c.baseURL + "/products"
	if limit > 0 {
		endpoint += "?limit=" + strconv.Itoa(limit)
	}
	return c.fetchList(ctx, endpoint)
}

// ByCategory fetches products in one category.
func (c *Client) ByCategory(ctx context.Context, category string) ([]contractx.Product, error) {
	cat := strings.TrimSpace(category)
	if cat == "" {
		return nil, fmt.Errorf("%w: category is required", contractx.ErrValidation)
	}
	endpoint := c.baseURL + "/products/category/" + url.PathEscape(cat)
	return c.fetchList(ctx, endpoint)
}

// Recommendations returns up to n randomly sampled products from the
// listing.
func (c *Client) Recommendations(ctx context.Context, n int) ([]contractx.Product, error) {
	if n <= 0 {
		n = 4
	}
	products, err := c.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	rand.Shuffle(len(products), func(i, j int) {
		products[i], products[j] = products[j], products[i]
	})
	if len(products) > n {
		products = products[:n]
	}
	return products, nil
}

func (c *Client) fetchList(ctx context.Context, endpoint string) ([]contractx.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: http status=%d", contractx.ErrCatalogUnavailable, resp.StatusCode)
	}

	var parsed productListResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// Some endpoints answer with a bare array instead of the
		// {products: [...]} envelope.
		var list []catalogProduct
		if arrErr := json.Unmarshal(raw, &list); arrErr != nil {
			return nil, fmt.Errorf("decode catalog response: %w", err)
		}
		parsed.Products = list
	}

	out := make([]contractx.Product, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		out = append(out, p.toContract())
	}
	return out, nil
}

var _ contractx.ProductFinder = (*Client)(nil)
