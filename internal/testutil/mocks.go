package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cadre-oss/sherpa/internal/action"
	"github.com/cadre-oss/sherpa/internal/config"
	"github.com/cadre-oss/sherpa/internal/provider"
	"github.com/cadre-oss/sherpa/internal/telemetry"
)

// MockProvider implements provider.Provider for testing.
type MockProvider struct {
	mu         sync.Mutex
	Responses  []*provider.Response // queued responses, consumed in order
	Calls      []*provider.CompletionRequest
	ShouldFail bool
	FailErr    error
	Delay      time.Duration
	idx        int
}

// Reply builds a queued response with the given content.
func Reply(content string) *provider.Response {
	return &provider.Response{Content: content, StopReason: "end_turn"}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Complete(ctx context.Context, req *provider.CompletionRequest) (*provider.Response, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if m.ShouldFail {
		if m.FailErr != nil {
			return nil, m.FailErr
		}
		return nil, fmt.Errorf("mock provider error")
	}

	if m.idx >= len(m.Responses) {
		return &provider.Response{
			Content:    "default mock response",
			StopReason: "end_turn",
		}, nil
	}

	resp := m.Responses[m.idx]
	m.idx++
	return resp, nil
}

// CallCount returns the number of Complete calls made (thread-safe).
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or nil.
func (m *MockProvider) LastCall() *provider.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	return m.Calls[len(m.Calls)-1]
}

// MockAction implements action.Action for testing.
type MockAction struct {
	action.Base
	Result     string
	ShouldFail bool

	mu       sync.Mutex
	CallArgs []map[string]string // arguments of each Execute call
}

// NewMockAction creates a mock action that returns result.
func NewMockAction(name, result string) *MockAction {
	return &MockAction{
		Base: action.Base{
			ActionName:        name,
			ActionDescription: "mock " + name,
			ActionArgs:        []action.Argument{{Name: "input", Description: "test input"}},
		},
		Result: result,
	}
}

func (a *MockAction) Execute(ctx context.Context, args map[string]string) (string, error) {
	a.mu.Lock()
	a.CallArgs = append(a.CallArgs, args)
	a.mu.Unlock()

	if a.ShouldFail {
		return "", fmt.Errorf("mock action error")
	}
	return a.Result, nil
}

// ExecutionCount returns the number of times Execute was called (thread-safe).
func (a *MockAction) ExecutionCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.CallArgs)
}

// MockSearcher implements action.Searcher for testing.
type MockSearcher struct {
	Result  string
	Err     error
	Queries []string
}

func (s *MockSearcher) Search(ctx context.Context, query string) (string, error) {
	s.Queries = append(s.Queries, query)
	return s.Result, s.Err
}

// TestLogger returns a logger suitable for tests (verbose, no file output).
func TestLogger() *telemetry.Logger {
	return telemetry.NewLogger(true)
}

// TestConfig returns a minimal config for testing. No action needs the
// network: search is left out.
func TestConfig() *config.Config {
	return &config.Config{
		Name:    "test-project",
		Version: "1.0",
		Agent: config.AgentConfig{
			Name:          "tester",
			Description:   "an agent under test",
			MaxIterations: 5,
			Actions:       []string{"planning", "arithmetic", "synthesis"},
			Timeout:       "1m",
		},
		Memory: config.MemoryConfig{
			MaxTokens:    4000,
			TokenCounter: "words",
		},
		Provider: config.ProviderConfig{
			Name:      "mock",
			Model:     "mock-model",
			MaxTokens: 256,
		},
		Checkpoint: config.CheckpointConfig{
			Driver: "memory",
		},
	}
}
