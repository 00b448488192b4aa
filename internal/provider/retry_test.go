package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testProvider is a minimal scripted provider for retry tests.
type testProvider struct {
	responses []*Response
	errors    []error
	calls     int
}

func (p *testProvider) Name() string { return "test" }

func (p *testProvider) Complete(ctx context.Context, req *CompletionRequest) (*Response, error) {
	idx := p.calls
	p.calls++
	if idx < len(p.errors) && p.errors[idx] != nil {
		return nil, p.errors[idx]
	}
	if idx < len(p.responses) {
		return p.responses[idx], nil
	}
	return &Response{Content: "default", StopReason: "end_turn"}, nil
}

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
		JitterFraction: 0,
	}
}

func TestRetryProvider_SuccessFirstTry(t *testing.T) {
	inner := &testProvider{responses: []*Response{{Content: "ok"}}}
	rp := NewRetryProvider(inner, fastRetryConfig())

	resp, err := rp.Complete(context.Background(), &CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "test", rp.Name())
}

func TestRetryProvider_RetriesTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"status 500", &APIError{Provider: "test", StatusCode: 500, Body: "boom"}},
		{"status 429", &APIError{Provider: "test", StatusCode: 429, Body: "slow down"}},
		{"status 529", &APIError{Provider: "test", StatusCode: 529, Body: "overloaded"}},
		{"transport", &RequestError{Err: errors.New("connection reset")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &testProvider{
				errors:    []error{tt.err, nil},
				responses: []*Response{nil, {Content: "recovered"}},
			}
			rp := NewRetryProvider(inner, fastRetryConfig())

			resp, err := rp.Complete(context.Background(), &CompletionRequest{})
			require.NoError(t, err)
			assert.Equal(t, "recovered", resp.Content)
			assert.Equal(t, 2, inner.calls)
		})
	}
}

func TestRetryProvider_NoRetryOnClientError(t *testing.T) {
	apiErr := &APIError{Provider: "test", StatusCode: 400, Body: "bad request"}
	inner := &testProvider{errors: []error{apiErr}}
	rp := NewRetryProvider(inner, fastRetryConfig())

	_, err := rp.Complete(context.Background(), &CompletionRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apiErr)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryProvider_MaxRetriesExceeded(t *testing.T) {
	transient := &APIError{Provider: "test", StatusCode: 503, Body: "unavailable"}
	inner := &testProvider{errors: []error{transient, transient, transient, transient, transient}}
	rp := NewRetryProvider(inner, fastRetryConfig())

	_, err := rp.Complete(context.Background(), &CompletionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries (3) exceeded")
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 4, inner.calls)
}

func TestRetryProvider_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inner := &testProvider{errors: []error{&APIError{StatusCode: 500}, &APIError{StatusCode: 500}}}
	rp := NewRetryProvider(inner, RetryConfig{MaxRetries: 3, InitialBackoff: time.Second, MaxBackoff: time.Second})

	_, err := rp.Complete(ctx, &CompletionRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.False(t, IsRetryable(errors.New("unknown")))
	assert.False(t, IsRetryable(&APIError{StatusCode: 401}))
	assert.True(t, IsRetryable(fmt.Errorf("call: %w", &APIError{StatusCode: 502})))
	assert.True(t, IsRetryable(&RequestError{Err: errors.New("eof")}))
}

func TestUserPrompt(t *testing.T) {
	req := UserPrompt("be brief", "hello")
	assert.Equal(t, "be brief", req.System)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, Message{Role: "user", Content: "hello"}, req.Messages[0])
}
