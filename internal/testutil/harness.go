package testutil

import (
	"sync"
	"testing"

	"github.com/cadre-oss/sherpa/internal/checkpoint"
	"github.com/cadre-oss/sherpa/internal/config"
	"github.com/cadre-oss/sherpa/internal/event"
	"github.com/cadre-oss/sherpa/internal/provider"
	"github.com/cadre-oss/sherpa/internal/telemetry"
)

// TestHarness provides everything needed for agent tests:
// config, checkpoints, events, mock provider, and assertion helpers.
type TestHarness struct {
	T           *testing.T
	Config      *config.Config
	Checkpoints *checkpoint.Manager
	EventBus    *event.Bus
	Logger      *telemetry.Logger
	Provider    *MockProvider

	mu     sync.Mutex
	events []event.Event // captured events
}

// NewTestHarness creates a test harness with default configuration.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	checkpoints, err := checkpoint.NewManager("memory", "")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { checkpoints.Close() })

	logger := TestLogger()
	bus := event.NewBus(logger)

	h := &TestHarness{
		T:           t,
		Config:      TestConfig(),
		Checkpoints: checkpoints,
		EventBus:    bus,
		Logger:      logger,
		Provider:    &MockProvider{},
	}

	bus.Register(&eventCapture{harness: h})

	return h
}

// SetResponses queues mock provider responses.
func (h *TestHarness) SetResponses(contents ...string) {
	responses := make([]*provider.Response, len(contents))
	for i, c := range contents {
		responses[i] = Reply(c)
	}
	h.Provider.Responses = responses
}

// Events returns the captured events in emission order.
func (h *TestHarness) Events() []event.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]event.Event(nil), h.events...)
}

// AssertEventEmitted checks that an event of the given kind was emitted.
func (h *TestHarness) AssertEventEmitted(kind event.Kind) {
	h.T.Helper()
	if h.EventCount(kind) == 0 {
		h.T.Errorf("expected event %q to be emitted", kind)
	}
}

// AssertNoEvent checks that an event kind was NOT emitted.
func (h *TestHarness) AssertNoEvent(kind event.Kind) {
	h.T.Helper()
	if n := h.EventCount(kind); n > 0 {
		h.T.Errorf("expected event %q NOT to be emitted, but it was (%d times)", kind, n)
	}
}

// EventCount returns the number of events of the given kind.
func (h *TestHarness) EventCount(kind event.Kind) int {
	count := 0
	for _, e := range h.Events() {
		if e.Kind == kind {
			count++
		}
	}
	return count
}

// eventCapture is a blocking hook that records events.
type eventCapture struct {
	harness *TestHarness
}

func (c *eventCapture) Name() string            { return "test-capture" }
func (c *eventCapture) Matches(event.Kind) bool { return true }
func (c *eventCapture) IsBlocking() bool        { return true } // sync for tests

func (c *eventCapture) Handle(ev event.Event) error {
	c.harness.mu.Lock()
	defer c.harness.mu.Unlock()
	c.harness.events = append(c.harness.events, ev)
	return nil
}
