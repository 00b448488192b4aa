package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig controls retry behavior.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	JitterFraction float64
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     60 * time.Second,
		JitterFraction: 0.2,
	}
}

// RetryProvider wraps a Provider with automatic retry for transient errors.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// NewRetryProvider creates a RetryProvider wrapping inner.
func NewRetryProvider(inner Provider, cfg RetryConfig) *RetryProvider {
	return &RetryProvider{inner: inner, config: cfg}
}

func (r *RetryProvider) Name() string {
	return r.inner.Name()
}

func (r *RetryProvider) Complete(ctx context.Context, req *CompletionRequest) (*Response, error) {
	var (
		resp      *Response
		lastErr   error
		exhausted bool
	)

	operation := func() error {
		out, err := r.inner.Complete(ctx, req)
		if err != nil {
			lastErr = err
			if !IsRetryable(err) {
				return backoff.Permanent(err)
			}
			exhausted = true
			return err
		}
		resp = out
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(r.policy(), ctx)); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if exhausted && IsRetryable(lastErr) {
			return nil, fmt.Errorf("max retries (%d) exceeded: %w", r.config.MaxRetries, lastErr)
		}
		return nil, err
	}
	return resp, nil
}

// policy builds an exponential schedule capped at MaxRetries retries.
func (r *RetryProvider) policy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.config.InitialBackoff
	b.MaxInterval = r.config.MaxBackoff
	b.RandomizationFactor = r.config.JitterFraction
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	b.Reset()

	retries := r.config.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithMaxRetries(b, uint64(retries))
}
