// Package belief is an agent's working memory: the observable event log, the
// internal reasoning log, the task being worked on and the actions the agent
// may choose from. It also rebuilds token-budgeted prompt context from those
// logs and round-trips through a plain mapping for checkpoints.
//
// A Belief has a single owner and is not safe for concurrent use. Share one
// across goroutines through Guarded.
package belief

import (
	"github.com/cadre-oss/sherpa/internal/action"
	"github.com/cadre-oss/sherpa/internal/event"
)

// Belief holds the event logs and action registry of one agent.
type Belief struct {
	events         []event.Event
	internalEvents []event.Event
	currentTask    *event.Event
	actions        []action.Action
}

// New returns an empty Belief.
func New() *Belief {
	return &Belief{}
}

// Update records an observable event and reports whether it was appended. An
// event equal to one already recorded is ignored.
func (b *Belief) Update(e event.Event) bool {
	for _, existing := range b.events {
		if existing == e {
			return false
		}
	}
	b.events = append(b.events, e)
	return true
}

// UpdateInternal records a reasoning step. Repeats are kept.
func (b *Belief) UpdateInternal(kind event.Kind, agent, content string) {
	b.internalEvents = append(b.internalEvents, event.New(kind, agent, content))
}

// GetByType returns the internal events of the given kind in the order they
// were recorded.
func (b *Belief) GetByType(kind event.Kind) []event.Event {
	var out []event.Event
	for _, e := range b.internalEvents {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// SetCurrentTask replaces the current task. It does not touch the event log.
func (b *Belief) SetCurrentTask(e event.Event) {
	b.currentTask = &e
}

// CurrentTask returns the current task, if one has been set.
func (b *Belief) CurrentTask() (event.Event, bool) {
	if b.currentTask == nil {
		return event.Event{}, false
	}
	return *b.currentTask, true
}

// Events returns a copy of the observable event log.
func (b *Belief) Events() []event.Event {
	return append([]event.Event(nil), b.events...)
}

// InternalEvents returns a copy of the internal event log.
func (b *Belief) InternalEvents() []event.Event {
	return append([]event.Event(nil), b.internalEvents...)
}

// Reset clears both logs and the current task. Registered actions are kept.
func (b *Belief) Reset() {
	b.events = nil
	b.internalEvents = nil
	b.currentTask = nil
}
