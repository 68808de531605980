// Package common holds the shared HTTP transport used by the request
// gateway. It layers rate limiting, a bounded retry budget and optional
// wire-level debug logging over net/http.
package common

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/avast/retry-go"
	"github.com/veiloq/coinbase-connector/pkg/logging"
	"github.com/veiloq/coinbase-connector/pkg/ratelimit"
)

// HTTPClient executes HTTP requests with rate limiting and retries applied.
type HTTPClient interface {
	// Do executes the request. The request body, if any, must be replayable
	// (it is buffered internally so that retries can resend it).
	Do(ctx context.Context, req *http.Request) (*http.Response, error)

	// SetRateLimit updates the rate limiter configuration.
	SetRateLimit(limit ratelimit.Rate) error
}

// ClientConfig holds configuration for the HTTP client.
type ClientConfig struct {
	Timeout   time.Duration
	RateLimit ratelimit.Rate

	// MaxAttempts bounds how many times a request is sent. The default of 1
	// means no retries: the exchange owns backoff policy, and order
	// placement must never be silently resent.
	MaxAttempts uint
	RetryDelay  time.Duration

	// Debug dumps full requests and responses at debug level. Signed
	// headers are included, so enable only against sandbox endpoints.
	Debug bool

	Logger logging.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Timeout: 30 * time.Second,
		RateLimit: ratelimit.Rate{
			Limit:    10,
			Interval: time.Second,
		},
		MaxAttempts: 1,
		RetryDelay:  time.Second,
		Logger:      logging.NewLogger(),
	}
}

type client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    ratelimit.RateLimiter
	logger     logging.Logger
}

// NewHTTPClient creates a new HTTP client with the given configuration.
// A nil config selects DefaultConfig.
func NewHTTPClient(config *ClientConfig) HTTPClient {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxAttempts == 0 {
		config.MaxAttempts = 1
	}
	if config.Logger == nil {
		config.Logger = logging.NewLogger()
	}

	return &client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: ratelimit.NewTokenBucketLimiter(config.RateLimit),
		logger:  config.Logger,
	}
}

// Do implements HTTPClient.
func (c *client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait error: %w", err)
	}

	// Buffer the body once so each attempt can replay it.
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("error reading request body: %w", err)
		}
	}

	var resp *http.Response
	err := retry.Do(
		func() error {
			attempt := req.Clone(ctx)
			if body != nil {
				attempt.Body = io.NopCloser(bytes.NewReader(body))
			}

			if c.config.Debug {
				c.dumpRequest(attempt)
			}

			var err error
			resp, err = c.httpClient.Do(attempt)
			if err != nil {
				return fmt.Errorf("http request error: %w", err)
			}

			if c.config.Debug {
				c.dumpResponse(resp)
			}

			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return fmt.Errorf("retryable status code: %d", resp.StatusCode)
			}
			return nil
		},
		retry.Attempts(c.config.MaxAttempts),
		retry.Delay(c.config.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("retrying request",
				logging.Int("attempt", int(n)),
				logging.String("url", req.URL.String()),
				logging.Error(err),
			)
		}),
	)
	if err != nil {
		// A retryable status on the final attempt still has a usable
		// response; hand it to the caller for shape-based decoding.
		if resp != nil {
			return resp, nil
		}
		return nil, err
	}

	return resp, nil
}

// SetRateLimit implements HTTPClient.
func (c *client) SetRateLimit(limit ratelimit.Rate) error {
	return c.limiter.SetLimit(limit)
}

func (c *client) dumpRequest(req *http.Request) {
	dump, err := httputil.DumpRequestOut(req, true)
	if err != nil {
		c.logger.Debug("failed to dump request", logging.Error(err))
		return
	}
	c.logger.Debug("http request", logging.String("dump", string(dump)))
}

func (c *client) dumpResponse(resp *http.Response) {
	dump, err := httputil.DumpResponse(resp, true)
	if err != nil {
		c.logger.Debug("failed to dump response", logging.Error(err))
		return
	}
	c.logger.Debug("http response", logging.String("dump", string(dump)))
}
