package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 8 * time.Second

// Client fetches the product list from the upstream store API. One request is
// issued per page render; there is no retry, no backoff, and no distinction
// between failure kinds — any failure surfaces as a single error the caller
// maps to the fallback catalog message.
type Client struct {
	baseURL string
	limit   int
	http    *http.Client
}

// NewClient constructs a catalog client. The limit caps the product list size
// requested from the upstream API.
func NewClient(baseURL string, limit int) *Client {
	if limit <= 0 {
		limit = 6
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		limit:   limit,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Fetch retrieves the product list.
func (c *Client) Fetch(ctx context.Context) ([]Product, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("catalog: base url not configured")
	}

	endpoint, err := url.JoinPath(c.baseURL, "products")
	if err != nil {
		return nil, err
	}
	endpoint += "?limit=" + strconv.Itoa(c.limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("catalog: status %d: %s", resp.StatusCode, drainError(resp.Body))
	}

	var payload []productPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(payload))
	for _, p := range payload {
		mapped, ok := p.toProduct()
		if !ok {
			continue
		}
		products = append(products, mapped)
	}
	return products, nil
}

type productPayload struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
}

func (p productPayload) toProduct() (Product, bool) {
	title := strings.TrimSpace(p.Title)
	if p.ID <= 0 || title == "" {
		return Product{}, false
	}
	if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return Product{}, false
	}
	return Product{
		ID:          p.ID,
		Title:       title,
		Price:       p.Price,
		Image:       strings.TrimSpace(p.Image),
		Description: strings.TrimSpace(p.Description),
	}, true
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
