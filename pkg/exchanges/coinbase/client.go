// Package coinbase implements the authenticated request gateway for the
// Coinbase Pro REST API and helpers for its WebSocket feed authentication.
package coinbase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/veiloq/coinbase-connector/pkg/common"
	"github.com/veiloq/coinbase-connector/pkg/exchanges/interfaces"
	"github.com/veiloq/coinbase-connector/pkg/logging"
	"github.com/veiloq/coinbase-connector/pkg/ratelimit"
	"github.com/veiloq/coinbase-connector/pkg/websocket"
)

// Credentials identify the authenticated profile. They are immutable for the
// lifetime of a client and may be shared across clients. The secret is the
// base64-encoded HMAC key; it is decoded once at construction and never
// logged or serialized.
type Credentials struct {
	// BaseURL of the REST API, e.g. https://api.pro.coinbase.com or the
	// sandbox endpoint.
	BaseURL string

	// FeedURL of the WebSocket feed, e.g. wss://ws-feed.pro.coinbase.com.
	FeedURL string

	Key        string
	Passphrase string
	Secret     string
}

// Config holds gateway configuration.
type Config struct {
	Credentials

	// HTTPTimeout bounds every request round trip. Defaults to 15s.
	HTTPTimeout time.Duration

	// RateLimit paces outbound requests. Defaults to 10/s, the exchange's
	// published private-endpoint limit.
	RateLimit ratelimit.Rate

	// MaxAttempts is the per-request send budget. The default of 1 performs
	// no retries; backoff policy belongs to the caller.
	MaxAttempts uint

	// Debug enables wire-level request/response dumps. Sandbox use only:
	// dumps include the signed headers.
	Debug bool

	Logger logging.Logger
}

// Client is the request gateway. It owns the credentials and an HTTP
// transport, builds signed requests, and normalizes the exchange's dual
// success/error response shapes into typed results.
//
// A Client is stateless aside from its immutable credentials and is safe for
// concurrent use; each call is an independent round trip with its own
// timestamp and signature.
type Client struct {
	creds  Credentials
	secret []byte
	http   common.HTTPClient
	logger logging.Logger
	now    func() time.Time
}

var _ interfaces.Gateway = (*Client)(nil)

// NewClient creates a gateway from the given configuration. A malformed
// (non-base64) secret is rejected here so that configuration errors surface
// at construction, not on the first request.
func NewClient(cfg Config) (*Client, error) {
	secret, err := DecodeSecret(cfg.Secret)
	if err != nil {
		return nil, err
	}

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 15 * time.Second
	}
	if cfg.RateLimit.Limit == 0 {
		cfg.RateLimit = ratelimit.Rate{Limit: 10, Interval: time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewLogger()
	}

	httpClient := common.NewHTTPClient(&common.ClientConfig{
		Timeout:     cfg.HTTPTimeout,
		RateLimit:   cfg.RateLimit,
		MaxAttempts: cfg.MaxAttempts,
		Debug:       cfg.Debug,
		Logger:      cfg.Logger,
	})

	return &Client{
		creds:  cfg.Credentials,
		secret: secret,
		http:   httpClient,
		logger: cfg.Logger,
		now:    time.Now,
	}, nil
}

// GetAccounts implements interfaces.Gateway.
func (c *Client) GetAccounts(ctx context.Context) ([]interfaces.Account, error) {
	var accounts []interfaces.Account
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetOrder implements interfaces.Gateway.
func (c *Client) GetOrder(ctx context.Context, id string) (*interfaces.OpenOrder, error) {
	var order interfaces.OpenOrder
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrders implements interfaces.Gateway. Statuses become repeated query
// parameters in the order given; an empty list omits the query string so the
// exchange applies its default filter.
func (c *Client) GetOrders(ctx context.Context, statuses []string) ([]interfaces.OpenOrder, error) {
	var orders []interfaces.OpenOrder
	if err := c.do(ctx, http.MethodGet, ordersPath(statuses), nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func ordersPath(statuses []string) string {
	if len(statuses) == 0 {
		return "/orders"
	}
	var b strings.Builder
	b.WriteString("/orders")
	for i, status := range statuses {
		if i == 0 {
			b.WriteString("?status=")
		} else {
			b.WriteString("&status=")
		}
		b.WriteString(url.QueryEscape(status))
	}
	return b.String()
}

// marketOrderBody and limitOrderBody are the wire shapes of POST /orders.
type marketOrderBody struct {
	Type      string `json:"type"`
	Size      string `json:"size"`
	Side      string `json:"side"`
	ProductID string `json:"product_id"`
}

type limitOrderBody struct {
	Type      string `json:"type"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Side      string `json:"side"`
	ProductID string `json:"product_id"`
}

// PlaceOrder implements interfaces.Gateway. The spec is validated before any
// network call; an invalid size or a limit order without a price never
// reaches the wire.
func (c *Client) PlaceOrder(ctx context.Context, spec interfaces.OrderSpec) (*interfaces.OrderResponse, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var body interface{}
	switch spec.Type {
	case interfaces.Market:
		body = marketOrderBody{
			Type:      string(interfaces.Market),
			Size:      spec.Size,
			Side:      string(spec.Side),
			ProductID: spec.ProductID,
		}
	case interfaces.Limit:
		body = limitOrderBody{
			Type:      string(interfaces.Limit),
			Price:     spec.Price,
			Size:      spec.Size,
			Side:      string(spec.Side),
			ProductID: spec.ProductID,
		}
	}

	var resp interfaces.OrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type conversionBody struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// Convert implements interfaces.Gateway.
func (c *Client) Convert(ctx context.Context, from, to, amount string) (*interfaces.ConversionResponse, error) {
	if _, err := decimal.NewFromString(amount); err != nil {
		return nil, interfaces.NewInvalidRequest("invalid amount")
	}

	var resp interfaces.ConversionResponse
	body := conversionBody{From: from, To: to, Amount: amount}
	if err := c.do(ctx, http.MethodPost, "/conversions", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FeedAuth signs the pseudo-request the feed expects for private-channel
// subscriptions (GET /accounts with an empty body) and returns the fields to
// attach to the control message. The timestamp is captured here; pass the
// result to AuthenticatedSubscribe promptly or the feed will reject it as
// stale.
func (c *Client) FeedAuth() websocket.SubscribeAuth {
	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	return websocket.SubscribeAuth{
		Key:        c.creds.Key,
		Passphrase: c.creds.Passphrase,
		Timestamp:  timestamp,
		Signature:  Sign(c.secret, timestamp, http.MethodGet, "/accounts", ""),
	}
}

// do executes one signed round trip. path must include any query string:
// the signature covers the exact request path as sent.
//
// The exchange returns differently shaped JSON for success and error on the
// same endpoint, so decoding is two-stage: the body is first probed for the
// generic {"message": ...} error envelope, then decoded into the expected
// success shape.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	bodyText := ""
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return interfaces.NewInvalidRequest("request couldn't be serialized")
		}
		bodyText = string(raw)
	}

	// An empty body signs and sends as the empty string, never as "{}";
	// the exchange signature check covers the exact bytes on the wire.
	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	signature := Sign(c.secret, timestamp, method, path, bodyText)

	var reader io.Reader
	if bodyText != "" {
		reader = strings.NewReader(bodyText)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.creds.BaseURL+path, reader)
	if err != nil {
		return interfaces.NewInternalError("couldn't form request", err)
	}
	req.Header.Set("CB-ACCESS-SIGN", signature)
	req.Header.Set("CB-ACCESS-TIMESTAMP", timestamp)
	req.Header.Set("CB-ACCESS-KEY", c.creds.Key)
	req.Header.Set("CB-ACCESS-PASSPHRASE", c.creds.Passphrase)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return interfaces.NewNetworkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return interfaces.NewInternalError("couldn't read response body", err)
	}

	if message, ok := errorEnvelope(raw); ok {
		return interfaces.NewInvalidRequest(message)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return interfaces.NewInternalError("couldn't deserialize response", err)
	}
	return nil
}

// errorEnvelope reports whether the body is the exchange's generic error
// shape and returns its message. Success bodies never carry a top-level
// "message" field.
func errorEnvelope(raw []byte) (string, bool) {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", false
	}
	return envelope.Message, envelope.Message != ""
}
