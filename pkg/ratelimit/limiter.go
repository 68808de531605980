// Package ratelimit wraps Uber's token bucket limiter behind a small
// interface so that the HTTP gateway can pace outbound requests according to
// the exchange's published limits. The exchange itself owns throttling
// policy; this layer only keeps the client from tripping it.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/ratelimit"
)

// Rate expresses a limit as a number of operations per interval, e.g.
// {Limit: 10, Interval: time.Second}.
type Rate struct {
	Limit    int
	Interval time.Duration
}

// RateLimiter paces operations. Wait blocks until an operation is permitted
// or the context is cancelled.
type RateLimiter interface {
	Wait(ctx context.Context) error
	SetLimit(rate Rate) error
}

type uberLimiter struct {
	limiter ratelimit.Limiter
	rate    Rate
}

// NewTokenBucketLimiter creates a token bucket limiter from the given rate.
// The rate is converted to operations per second for the underlying limiter.
func NewTokenBucketLimiter(rate Rate) RateLimiter {
	rps := float64(rate.Limit) / rate.Interval.Seconds()
	return &uberLimiter{
		limiter: ratelimit.New(int(rps)),
		rate:    rate,
	}
}

// Wait implements RateLimiter.
func (l *uberLimiter) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limit wait cancelled: %w", ctx.Err())
	default:
		l.limiter.Take()
		return nil
	}
}

// SetLimit implements RateLimiter. It rejects non-positive limits or
// intervals and otherwise swaps in a fresh bucket with the new rate.
func (l *uberLimiter) SetLimit(rate Rate) error {
	if rate.Limit <= 0 || rate.Interval <= 0 {
		return fmt.Errorf("invalid rate limit: %+v", rate)
	}
	rps := float64(rate.Limit) / rate.Interval.Seconds()
	l.limiter = ratelimit.New(int(rps))
	l.rate = rate
	return nil
}
