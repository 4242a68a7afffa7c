package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/sync/singleflight"

	"github.com/weeklybasket/storefront/internal/domain"
)

// Client talks to the storefront backend. Every collaborator the engine
// depends on is reached through here; nothing else owns an HTTP
// connection to the backend.
type Client struct {
	baseURL string
	http    *http.Client

	// settings dedupes concurrent fetches of the same named setting.
	settings singleflight.Group
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

type OrderCreateRequest struct {
	UserInfo domain.UserInfo    `json:"user_info"`
	Items    []domain.OrderItem `json:"items"`
}

type OrderItemsUpdate struct {
	Items    []domain.OrderItem `json:"items"`
	UserInfo *domain.UserInfo   `json:"user_info,omitempty"`
}

// Products lists products, optionally filtered by category.
func (c *Client) Products(ctx context.Context, categoryID string) ([]domain.Product, error) {
	path := "/api/products"
	if categoryID != "" {
		path += "?category_id=" + url.QueryEscape(categoryID)
	}
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches a single product's current snapshot (price, quantity).
func (c *Client) Product(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ValidateStock asks the inventory collaborator for a verdict on the
// candidate item set. Per-item error strings come back verbatim.
func (c *Client) ValidateStock(ctx context.Context, items []domain.StockValidationItem) (*domain.StockValidationResult, error) {
	req := struct {
		Items []domain.StockValidationItem `json:"items"`
	}{Items: items}

	var result domain.StockValidationResult
	if err := c.do(ctx, http.MethodPost, "/api/stock/validate", req, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Setting fetches a single named numeric setting. Concurrent callers for
// the same name share one round trip.
func (c *Client) Setting(ctx context.Context, name string) (float64, error) {
	v, err, _ := c.settings.Do(name, func() (interface{}, error) {
		var resp struct {
			Value float64 `json:"value"`
		}
		if err := c.do(ctx, http.MethodGet, "/api/settings/"+url.PathEscape(name), nil, nil, &resp); err != nil {
			return 0.0, err
		}
		return resp.Value, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

// CreateOrder places a new order. The idempotency key lets the backend
// collapse retries of the same submission into one order.
func (c *Client) CreateOrder(ctx context.Context, req *OrderCreateRequest, idempotencyKey string) (*domain.Order, error) {
	headers := map[string]string{"Idempotency-Key": idempotencyKey}
	var order domain.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, headers, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UserOrders looks up all orders placed with the given email/password
// pair. The credential is a lookup key, not a session token.
func (c *Client) UserOrders(ctx context.Context, email, password string) ([]domain.Order, error) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var orders []domain.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders/user", req, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// AdminOrders lists every order (administrative surface).
func (c *Client) AdminOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, "/api/admin/orders", nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ReplaceOrderItems is the customer path: the full replacement item set
// plus the identity bundle, credential included.
func (c *Client) ReplaceOrderItems(ctx context.Context, orderID string, update *OrderItemsUpdate) (*domain.Order, error) {
	var order domain.Order
	path := "/api/orders/" + url.PathEscape(orderID) + "/items"
	if err := c.do(ctx, http.MethodPut, path, update, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// AdminReplaceOrderItems is the administrative path: no credential.
func (c *Client) AdminReplaceOrderItems(ctx context.Context, orderID string, items []domain.OrderItem) (*domain.Order, error) {
	update := OrderItemsUpdate{Items: items}
	var order domain.Order
	path := "/api/admin/orders/" + url.PathEscape(orderID) + "/items"
	if err := c.do(ctx, http.MethodPut, path, update, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus moves an order through the status vocabulary
// (administrative surface).
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	req := struct {
		Status string `json:"status"`
	}{Status: status.String()}

	var order domain.Order
	path := "/api/admin/orders/" + url.PathEscape(orderID) + "/status"
	if err := c.do(ctx, http.MethodPut, path, req, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Health pings the backend's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, headers map[string]string, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request failed: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return newRemoteError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response failed (status %d): %w", resp.StatusCode, err)
	}
	return nil
}
