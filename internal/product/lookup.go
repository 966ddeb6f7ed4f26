// Package product resolves retail barcodes to a human-readable product line.
package product

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"qrscanner/internal/barcode"
	"qrscanner/internal/contextutil"
)

const (
	unknownBrand   = "Unknown Brand"
	unknownProduct = "Unknown Product"

	// NotFound is the lookup text for a retail code the database does not know.
	NotFound = "Product not found in database"
)

// Cache stores successful lookups keyed by barcode content.
type Cache interface {
	Get(ctx context.Context, content string) (string, bool, error)
	Set(ctx context.Context, content, info string, ttl time.Duration) error
}

// Client looks up product information for UPC/EAN codes.
type Client struct {
	BaseURL string
	client  *http.Client

	cache    Cache
	cacheTTL time.Duration
}

// NewClient creates a lookup client against a UPCitemdb-compatible API.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// WithCache enables read-through caching of found products.
func (c *Client) WithCache(cache Cache, ttl time.Duration) *Client {
	c.cache = cache
	c.cacheTTL = ttl
	return c
}

type lookupResponse struct {
	Items []lookupItem `json:"items"`
}

type lookupItem struct {
	Title string `json:"title"`
	Brand string `json:"brand"`
}

// Lookup returns product info for content. Non-retail formats never touch the
// network.
func (c *Client) Lookup(ctx context.Context, content string, format barcode.Format) (string, error) {
	if !format.IsRetail() {
		return "Not a UPC barcode. Content: " + content, nil
	}

	logger := contextutil.LoggerFromContext(ctx)

	if c.cache != nil {
		info, ok, err := c.cache.Get(ctx, content)
		switch {
		case err != nil:
			logger.WarnContext(ctx, "product cache read failed", "error", err)
		case ok:
			logger.DebugContext(ctx, "product cache hit", "content", content)
			return info, nil
		}
	}

	info, found, err := c.fetch(ctx, content)
	if err != nil {
		return "", err
	}

	if found && c.cache != nil {
		if err := c.cache.Set(ctx, content, info, c.cacheTTL); err != nil {
			logger.WarnContext(ctx, "product cache write failed", "error", err)
		}
	}
	return info, nil
}

func (c *Client) fetch(ctx context.Context, upc string) (string, bool, error) {
	endpoint := fmt.Sprintf("%s/prod/trial/lookup?upc=%s", c.BaseURL, url.QueryEscape(upc))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", false, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(body.Items) == 0 {
		return NotFound, false, nil
	}

	item := body.Items[0]
	title := item.Title
	if title == "" {
		title = unknownProduct
	}
	brand := item.Brand
	if brand == "" {
		brand = unknownBrand
	}
	return fmt.Sprintf("%s by %s", title, brand), true, nil
}
