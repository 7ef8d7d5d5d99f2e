// Package client is a typed Go client for the green store API together with the
// session state and text views used by the greenshop CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flicky/green-store/internal/dto"
)

const DefaultBaseURL = "http://localhost:8080/api"

// APIError is a non-2xx response. Message is the server's {error} field.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

// --- auth ---

func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	var resp dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	var resp dto.AuthResponse
	req := dto.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Me(ctx context.Context) (*dto.UserResponse, error) {
	var resp dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- catalog ---

func (c *Client) ListProducts(ctx context.Context) ([]dto.ProductResponse, error) {
	var resp []dto.ProductResponse
	if err := c.do(ctx, http.MethodGet, "/products", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	var resp dto.ProductResponse
	if err := c.do(ctx, http.MethodGet, "/products/"+id.String(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateProduct(ctx context.Context, req dto.ProductRequest) (*dto.ProductResponse, error) {
	var resp dto.ProductResponse
	if err := c.do(ctx, http.MethodPost, "/products", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id uuid.UUID, req dto.ProductRequest) (*dto.ProductResponse, error) {
	var resp dto.ProductResponse
	if err := c.do(ctx, http.MethodPut, "/products/"+id.String(), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/products/"+id.String(), nil, nil)
}

// ExportProducts copies the catalog workbook to w.
func (c *Client) ExportProducts(ctx context.Context, w io.Writer) error {
	resp, err := c.send(ctx, http.MethodGet, "/products/export", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	return nil
}

// --- cart ---

func (c *Client) GetCart(ctx context.Context) ([]dto.CartItemResponse, error) {
	var resp []dto.CartItemResponse
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) AddToCart(ctx context.Context, productID uuid.UUID, quantity int) (*dto.CartItemResponse, error) {
	var resp dto.CartItemResponse
	req := dto.AddCartItemRequest{ProductID: productID, Quantity: quantity}
	if err := c.do(ctx, http.MethodPost, "/cart", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetCartQuantity replaces a line's quantity; zero or less removes the line.
func (c *Client) SetCartQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	req := dto.UpdateCartItemRequest{Quantity: &quantity}
	return c.do(ctx, http.MethodPut, "/cart/"+itemID.String(), req, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/cart/"+itemID.String(), nil, nil)
}

// --- orders ---

func (c *Client) Checkout(ctx context.Context) (*dto.OrderResponse, error) {
	var resp dto.OrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]dto.OrderResponse, error) {
	var resp []dto.OrderResponse
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	return c.orderCall(ctx, http.MethodGet, "/orders/"+id.String())
}

func (c *Client) CancelOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	return c.orderCall(ctx, http.MethodDelete, "/orders/"+id.String())
}

func (c *Client) CompleteOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	return c.orderCall(ctx, http.MethodPost, "/orders/"+id.String()+"/complete")
}

func (c *Client) orderCall(ctx context.Context, method, path string) (*dto.OrderResponse, error) {
	var resp dto.OrderResponse
	if err := c.do(ctx, method, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- sustainability ---

func (c *Client) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	var resp dto.DashboardResponse
	if err := c.do(ctx, http.MethodGet, "/sustainability/dashboard", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Preferences(ctx context.Context) (*dto.PreferencesResponse, error) {
	var resp dto.PreferencesResponse
	if err := c.do(ctx, http.MethodGet, "/sustainability/preferences", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdatePreferences(ctx context.Context, req dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error) {
	var resp dto.PreferencesResponse
	if err := c.do(ctx, http.MethodPut, "/sustainability/preferences", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Leaderboard(ctx context.Context) ([]dto.LeaderboardEntry, error) {
	var resp []dto.LeaderboardEntry
	if err := c.do(ctx, http.MethodGet, "/sustainability/leaderboard", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) CartImpact(ctx context.Context) (*dto.CartImpactResponse, error) {
	var resp dto.CartImpactResponse
	if err := c.do(ctx, http.MethodGet, "/sustainability/cart-impact", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- transport ---

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// send performs the request and turns non-2xx responses into *APIError.
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var payload dto.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return nil, apiErr
}
