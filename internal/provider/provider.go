// Package provider abstracts the language model the agent consults. The agent
// only needs plain text completions; tool calling is handled by the agent's own
// action selection.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Message represents a conversation message
type Message struct {
	Role    string `json:"role"` // user, assistant
	Content string `json:"content"`
}

// CompletionRequest represents a completion request
type CompletionRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	StopSeqs    []string  `json:"stop_sequences,omitempty"`
	JSON        bool      `json:"json,omitempty"` // ask for a JSON object reply where supported
}

// Response represents a provider response
type Response struct {
	Content    string `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      Usage  `json:"usage"`
}

// Usage tracks token usage
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a completion request
	Complete(ctx context.Context, req *CompletionRequest) (*Response, error)
}

// UserPrompt builds a single-turn request.
func UserPrompt(system, prompt string) *CompletionRequest {
	return &CompletionRequest{
		System:   system,
		Messages: []Message{{Role: "user", Content: prompt}},
	}
}

// APIError is a non-2xx reply from a provider endpoint.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, strings.TrimSpace(e.Body))
}

// RequestError is a transport failure before any status was received.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string { return "request failed: " + e.Err.Error() }
func (e *RequestError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transient provider failure: transport
// errors, rate limiting, and server-side 5xx/529 replies.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 502, 503, 529:
			return true
		}
		return false
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
