// Package api implements the HTTP client for the purchase tracker
// backend. It satisfies service.Backend and keeps process-scoped
// reference-data caches: every successful create is appended to the
// matching cache synchronously, so later items in the same submission
// can reuse just-created entities without a refetch.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pantrylog/pantrylog/internal/common"
	"github.com/pantrylog/pantrylog/internal/model"
)

// Error is a non-2xx response from the backend, carrying the detail
// text the server provided when it did.
type Error struct {
	Detail     string
	StatusCode int
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("operation failed (status %d)", e.StatusCode)
}

// Client talks to the backend over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu         sync.RWMutex
	users      []model.User
	shops      []model.Shop
	categories []model.Category
	products   []model.Product
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type errorBody struct {
	Detail string `json:"detail"`
}

// do performs one request and decodes the response into out when the
// status is 2xx, or into the backend's error shape otherwise.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network failures are worth retrying.
		return &common.RetryableError{
			Err:       fmt.Errorf("request to %s failed: %w", path, err),
			Retryable: true,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail errorBody
		data, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(data, &detail)
		apiErr := &Error{StatusCode: resp.StatusCode, Detail: detail.Detail}
		return &common.RetryableError{
			Err:       apiErr,
			Retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// CreateUser creates a user and appends it to the user cache.
func (c *Client) CreateUser(ctx context.Context, name, email string) (*model.User, error) {
	var user model.User
	payload := map[string]string{"name": name, "email": email}
	if err := c.do(ctx, http.MethodPost, "/api/v1/users", payload, &user); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.users = append(c.users, user)
	c.mu.Unlock()
	return &user, nil
}

// ListUsers fetches all users and refreshes the cache.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/users", nil, &users); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.users = users
	c.mu.Unlock()
	return users, nil
}

// Users returns the cached user list.
func (c *Client) Users() []model.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.User(nil), c.users...)
}

// CreateShop creates a shop and appends it to the shop cache.
func (c *Client) CreateShop(ctx context.Context, name string) (*model.Shop, error) {
	var shop model.Shop
	payload := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/api/v1/shops", payload, &shop); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.shops = append(c.shops, shop)
	c.mu.Unlock()
	return &shop, nil
}

// ListShops fetches all shops and refreshes the cache.
func (c *Client) ListShops(ctx context.Context) ([]model.Shop, error) {
	var shops []model.Shop
	if err := c.do(ctx, http.MethodGet, "/api/v1/shops", nil, &shops); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.shops = shops
	c.mu.Unlock()
	return shops, nil
}

// Shops returns the cached shop list.
func (c *Client) Shops() []model.Shop {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Shop(nil), c.shops...)
}

// CreateCategory creates (or, server-side, gets) a category and appends
// it to the category cache when it is new to the client.
func (c *Client) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	payload := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/api/v1/categories", payload, &category); err != nil {
		return nil, err
	}
	c.mu.Lock()
	known := false
	for _, existing := range c.categories {
		if existing.ID == category.ID {
			known = true
			break
		}
	}
	if !known {
		c.categories = append(c.categories, category)
	}
	c.mu.Unlock()
	return &category, nil
}

// ListCategories fetches all categories and refreshes the cache.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := c.do(ctx, http.MethodGet, "/api/v1/categories", nil, &categories); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.categories = categories
	c.mu.Unlock()
	return categories, nil
}

// Categories returns the cached category list.
func (c *Client) Categories() []model.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Category(nil), c.categories...)
}

// CreateProduct creates a product and appends it to the product cache.
func (c *Client) CreateProduct(ctx context.Context, input model.ProductInput) (*model.Product, error) {
	var product model.Product
	if err := c.do(ctx, http.MethodPost, "/api/v1/products", input, &product); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.products = append(c.products, product)
	c.mu.Unlock()
	return &product, nil
}

// ListProducts fetches all products and refreshes the cache.
func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := c.do(ctx, http.MethodGet, "/api/v1/products", nil, &products); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.products = products
	c.mu.Unlock()
	return products, nil
}

// Products returns the cached product list.
func (c *Client) Products() []model.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Product(nil), c.products...)
}

// CreatePurchase submits a resolved purchase.
func (c *Client) CreatePurchase(ctx context.Context, purchase model.ResolvedPurchase) (*model.Purchase, error) {
	var created model.Purchase
	if err := c.do(ctx, http.MethodPost, "/api/v1/purchases", purchase, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePurchase replaces an existing purchase wholesale.
func (c *Client) UpdatePurchase(ctx context.Context, id int64, purchase model.ResolvedPurchase) (*model.Purchase, error) {
	var updated model.Purchase
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/purchases/%d", id), purchase, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeletePurchase removes a purchase.
func (c *Client) DeletePurchase(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/purchases/%d", id), nil, nil)
}

// ListPurchases fetches all purchases.
func (c *Client) ListPurchases(ctx context.Context) ([]model.Purchase, error) {
	var purchases []model.Purchase
	if err := c.do(ctx, http.MethodGet, "/api/v1/purchases", nil, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

// RefreshReferenceData reloads the user, shop, category, and product caches.
func (c *Client) RefreshReferenceData(ctx context.Context) error {
	if _, err := c.ListUsers(ctx); err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	if _, err := c.ListShops(ctx); err != nil {
		return fmt.Errorf("failed to load shops: %w", err)
	}
	if _, err := c.ListCategories(ctx); err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	if _, err := c.ListProducts(ctx); err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	return nil
}
