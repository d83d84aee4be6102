// Package apiclient is the console's client for the retail REST API.
//
// A single Client is shared by every handler. It attaches the administrator's
// credential token as a bearer header and turns failures into *APIError values
// whose Kind tells callers how to react. The client never retries, caches or
// navigates; reacting to an expired session is left to the caller.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultContentType = "application/json"

// TokenSource yields the credential token for the session behind ctx.
// An empty string means no token is held.
type TokenSource interface {
	Token(ctx context.Context) string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) string

// Token implements TokenSource.
func (f TokenFunc) Token(ctx context.Context) string { return f(ctx) }

// StaticToken always yields the same token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token(context.Context) string { return string(s) }

// CallObserver is notified after every call with its outcome.
type CallObserver interface {
	ObserveCall(group, operation, outcome string, duration time.Duration)
}

// Client talks to the retail API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	observer   CallObserver
	logger     *zap.Logger

	Auth          *AuthGroup
	Users         *UsersGroup
	Products      *ProductsGroup
	Orders        *OrdersGroup
	Subscriptions *SubscriptionsGroup
	Vendors       *VendorsGroup
	Dashboard     *DashboardGroup
}

// Option allows for customizing the client.
type Option func(*Client) error

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     StaticToken(""),
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.Auth = &AuthGroup{c: c}
	c.Users = &UsersGroup{c: c}
	c.Products = &ProductsGroup{c: c}
	c.Orders = &OrdersGroup{c: c}
	c.Subscriptions = &SubscriptionsGroup{c: c}
	c.Vendors = &VendorsGroup{c: c}
	c.Dashboard = &DashboardGroup{c: c}
	return c, nil
}

// WithHTTPClient allows setting a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return fmt.Errorf("HTTP client cannot be nil")
		}
		c.httpClient = httpClient
		return nil
	}
}

// WithTokenSource sets where the bearer token is read from.
func WithTokenSource(src TokenSource) Option {
	return func(c *Client) error {
		if src == nil {
			return fmt.Errorf("token source cannot be nil")
		}
		c.tokens = src
		return nil
	}
}

// WithObserver reports call outcomes, typically to metrics.
func WithObserver(observer CallObserver) Option {
	return func(c *Client) error {
		c.observer = observer
		return nil
	}
}

// WithLogger sets the logger used for call tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// BaseURL returns the API root the client is bound to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one call; group and op only label logs and metrics.
type request struct {
	group  string
	op     string
	method string
	path   string
	body   any
	// raw, when set, is sent as is with contentType instead of JSON encoding body.
	raw         io.Reader
	contentType string
	header      http.Header
}

func (c *Client) do(ctx context.Context, r request) (json.RawMessage, error) {
	start := time.Now()
	raw, err := c.send(ctx, r)
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	if c.observer != nil {
		c.observer.ObserveCall(r.group, r.op, outcome, time.Since(start))
	}
	c.logger.Debug("api call",
		zap.String("group", r.group),
		zap.String("operation", r.op),
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", time.Since(start)),
	)
	return raw, err
}

func (c *Client) send(ctx context.Context, r request) (json.RawMessage, error) {
	body := r.raw
	if body == nil && r.body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(r.body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", defaultContentType)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	c.authorize(req)
	for key, values := range r.header {
		for i, v := range values {
			if i == 0 {
				req.Header.Set(key, v)
				continue
			}
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newTransportError(r.method, r.path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(r.method, r.path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(r.method, r.path, resp.StatusCode, payload)
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, nil
	}
	return json.RawMessage(payload), nil
}

// authorize attaches the bearer credential when the session holds one.
func (c *Client) authorize(req *http.Request) {
	if token := c.tokens.Token(req.Context()); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// Decode unmarshals a raw response body into T, passing call errors through.
func Decode[T any](raw json.RawMessage, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}
