package authority

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

	"github.com/angelmondragon/storefront-engine/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-engine/pkg/errors"
)

const (
	pathValidateItem    = "api/cart/validate-item"
	pathValidateCart    = "api/cart/validate"
	pathSyncCart        = "api/cart"
	pathMergeCart       = "api/cart/merge"
	pathValidateAddress = "api/checkout/validate-address"

	errorBodyReadLimit int64 = 2048

	defaultRequestTimeout = 10 * time.Second
)

var errBaseURLRequired = errors.New("authority base url is required")

// Client talks to the remote cart authority: the single source of truth
// for stock, pricing, merged carts, and address validity.
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

// NewClient builds an authority client from config. The request timeout
// bounds every call so in-flight engine flags can never stick forever.
func NewClient(cfg config.AuthorityConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}

	return client, nil
}

// ValidateItem asks the authority whether the requested quantity of a
// single item is available.
func (c *Client) ValidateItem(ctx context.Context, check ItemCheck) (*ItemValidation, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNetwork, "authority client not configured")
	}
	if strings.TrimSpace(check.ProductID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if check.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var result ItemValidation
	if err := c.postJSON(ctx, http.MethodPost, pathValidateItem, check, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidateCart submits the full item list for bulk validation.
func (c *Client) ValidateCart(ctx context.Context, items []Item) (*CartValidation, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNetwork, "authority client not configured")
	}

	body := struct {
		Items []Item `json:"items"`
	}{Items: items}

	var result CartValidation
	if err := c.postJSON(ctx, http.MethodPost, pathValidateCart, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SyncCart pushes the current snapshot to the backend of record. The
// response carries only an acknowledgement.
func (c *Client) SyncCart(ctx context.Context, items []Item, userID string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeNetwork, "authority client not configured")
	}

	body := struct {
		Items  []Item `json:"items"`
		UserID string `json:"userId,omitempty"`
	}{Items: items, UserID: userID}

	var ack struct {
		Success bool `json:"success"`
	}
	if err := c.postJSON(ctx, http.MethodPut, pathSyncCart, body, &ack); err != nil {
		return err
	}
	if !ack.Success {
		return pkgerrors.New(pkgerrors.CodeNetwork, "authority declined cart sync")
	}
	return nil
}

// MergeCart sends the guest item list for merging into the user's account
// cart and returns the authoritative merged result. Deduplication, stock
// reclamation, and pricing rules all live server-side.
func (c *Client) MergeCart(ctx context.Context, guestItems []Item, userID string) ([]Item, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNetwork, "authority client not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required for merge")
	}

	body := struct {
		GuestItems []Item `json:"guestItems"`
		UserID     string `json:"userId"`
	}{GuestItems: guestItems, UserID: userID}

	var result struct {
		Items []Item `json:"items"`
	}
	if err := c.postJSON(ctx, http.MethodPost, pathMergeCart, body, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// ValidateAddress submits a shipping address for validation. Callers fail
// open on error: an unreachable validator must not block checkout.
func (c *Client) ValidateAddress(ctx context.Context, address Address) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeNetwork, "authority client not configured")
	}
	return c.postJSON(ctx, http.MethodPost, pathValidateAddress, address, nil)
}

func (c *Client) postJSON(ctx context.Context, method, path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal authority request")
	}

	url := c.buildURL(path)
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build authority request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, fmt.Sprintf("%s %s", method, path))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(resp, path)
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "decode authority response")
	}
	return nil
}

// mapError converts non-2xx responses into the engine's taxonomy: client
// errors are rejections the UI shows inline, everything else is transient.
func (c *Client) mapError(resp *http.Response, path string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	message := extractMessage(raw)
	if message == "" {
		message = fmt.Sprintf("authority returned status %d", resp.StatusCode)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]any{
			"path":   path,
			"status": resp.StatusCode,
		})
	}
	return pkgerrors.Wrap(pkgerrors.CodeNetwork, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), fmt.Sprintf("%s failed", path))
}

func extractMessage(raw []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	if envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return envelope.Message
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(c.baseURL, "/"), strings.TrimLeft(path, "/"))
}
