package event

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger records warn messages.
type testLogger struct {
	mu       sync.Mutex
	warnings []string
	infos    []string
}

func (l *testLogger) Warn(msg string, keyvals ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, msg)
}

func (l *testLogger) Info(msg string, keyvals ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *testLogger) Debug(msg string, keyvals ...interface{}) {}

// collectHook records handled events.
type collectHook struct {
	baseHook
	mu       sync.Mutex
	handled  []Event
	handleFn func(Event) error
}

func newCollectHook(name string, kinds []Kind, blocking bool) *collectHook {
	return &collectHook{
		baseHook: baseHook{name: name, kinds: kinds, blocking: blocking},
	}
}

func (h *collectHook) Handle(ev Event) error {
	if h.handleFn != nil {
		return h.handleFn(ev)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, ev)
	return nil
}

func (h *collectHook) events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	cp := make([]Event, len(h.handled))
	copy(cp, h.handled)
	return cp
}

func TestBus_Emit_BlockingHook(t *testing.T) {
	bus := NewBus(nil)
	hook := newCollectHook("test", []Kind{Task}, true)
	bus.Register(hook)

	require.NoError(t, bus.Emit(New(Task, "user", "write a poem")))

	handled := hook.events()
	require.Len(t, handled, 1)
	assert.Equal(t, Task, handled[0].Kind)
	assert.Equal(t, "write a poem", handled[0].Content)
}

func TestBus_Emit_NonBlockingHook(t *testing.T) {
	bus := NewBus(nil)
	hook := newCollectHook("async", []Kind{Result}, false)
	bus.Register(hook)

	require.NoError(t, bus.Emit(New(Result, "agent", "done")))
	bus.Wait()

	assert.Len(t, hook.events(), 1)
}

func TestBus_Emit_RoutingByKind(t *testing.T) {
	bus := NewBus(nil)
	taskHook := newCollectHook("task-hook", []Kind{Task, Result}, true)
	feedbackHook := newCollectHook("feedback-hook", []Kind{Feedback}, true)
	bus.Register(taskHook)
	bus.Register(feedbackHook)

	bus.Emit(New(Task, "user", "a"))
	bus.Emit(New(Feedback, "critic", "b"))
	bus.Emit(New(Result, "agent", "c"))

	assert.Len(t, taskHook.events(), 2)
	assert.Len(t, feedbackHook.events(), 1)
}

func TestBus_Emit_MatchAllKinds(t *testing.T) {
	bus := NewBus(nil)
	hook := newCollectHook("catch-all", nil, true)
	bus.Register(hook)

	bus.Emit(New(Task, "user", "a"))
	bus.Emit(New(Kind("custom-marker"), "agent", "b"))

	assert.Len(t, hook.events(), 2)
}

func TestBus_BlockingHookError(t *testing.T) {
	bus := NewBus(nil)
	hook := newCollectHook("failing", []Kind{Task}, true)
	hook.handleFn = func(ev Event) error {
		return fmt.Errorf("hook error")
	}
	bus.Register(hook)

	err := bus.Emit(New(Task, "user", "a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocking hook failing failed")
}

func TestBus_NonBlockingHookErrorLogged(t *testing.T) {
	logger := &testLogger{}
	bus := NewBus(logger)
	hook := newCollectHook("failing-async", []Kind{Task}, false)
	hook.handleFn = func(ev Event) error {
		return fmt.Errorf("async hook error")
	}
	bus.Register(hook)

	bus.Emit(New(Task, "user", "a"))
	bus.Wait()

	logger.mu.Lock()
	defer logger.mu.Unlock()
	assert.NotEmpty(t, logger.warnings)
}

func TestBus_BlockingHooksSequential(t *testing.T) {
	bus := NewBus(nil)
	var order []string
	var mu sync.Mutex

	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("hook-%d", i)
		hook := newCollectHook(name, []Kind{Task}, true)
		hook.handleFn = func(ev Event) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
		bus.Register(hook)
	}

	bus.Emit(New(Task, "user", "a"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"hook-0", "hook-1", "hook-2"}, order)
}

func TestBus_Disabled(t *testing.T) {
	bus := NewBus(nil)
	hook := newCollectHook("test", nil, true)
	bus.Register(hook)

	bus.SetEnabled(false)
	bus.Emit(New(Task, "user", "a"))

	assert.Empty(t, hook.events())
}

func TestBus_NilBusSafe(t *testing.T) {
	var bus *Bus

	bus.Register(nil)
	bus.SetEnabled(false)
	bus.Wait()
	assert.NoError(t, bus.Emit(New(Task, "user", "a")))
	assert.Equal(t, 0, bus.Len())
}

func TestBus_ConcurrentEmit(t *testing.T) {
	bus := NewBus(nil)
	var count int64
	hook := newCollectHook("concurrent", nil, true)
	hook.handleFn = func(ev Event) error {
		atomic.AddInt64(&count, 1)
		return nil
	}
	bus.Register(hook)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Emit(New(ReasoningStep, "agent", "thinking"))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), atomic.LoadInt64(&count))
}
