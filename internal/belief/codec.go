package belief

import (
	"encoding/json"
	"fmt"

	"github.com/cadre-oss/sherpa/internal/errors"
	"github.com/cadre-oss/sherpa/internal/event"
)

// Representation keys.
const (
	keyEvents         = "events"
	keyInternalEvents = "internal_events"
	keyCurrentTask    = "current_task"
)

// ToRepresentation converts the Belief into plain maps and slices:
//
//	{"events": [...], "internal_events": [...], "current_task": {...} or nil}
//
// Each event is {"kind": ..., "agent": ..., "content": ...}. Actions are not
// part of the representation.
func (b *Belief) ToRepresentation() map[string]any {
	var current any
	if b.currentTask != nil {
		current = eventMap(*b.currentTask)
	}
	return map[string]any{
		keyEvents:         eventList(b.events),
		keyInternalEvents: eventList(b.internalEvents),
		keyCurrentTask:    current,
	}
}

func eventList(events []event.Event) []any {
	out := make([]any, len(events))
	for i, e := range events {
		out[i] = eventMap(e)
	}
	return out
}

func eventMap(e event.Event) map[string]any {
	return map[string]any{
		"kind":    string(e.Kind),
		"agent":   e.Agent,
		"content": e.Content,
	}
}

// FromRepresentation builds a new Belief from the output of ToRepresentation.
// A missing or mistyped field fails with DECODE_FAILED naming its path.
// Duplicate observable events in data are kept as they are.
func FromRepresentation(data map[string]any) (*Belief, error) {
	events, err := decodeList(data, keyEvents)
	if err != nil {
		return nil, err
	}
	internal, err := decodeList(data, keyInternalEvents)
	if err != nil {
		return nil, err
	}

	raw, ok := data[keyCurrentTask]
	if !ok {
		return nil, decodeError(keyCurrentTask, "missing")
	}

	b := &Belief{events: events, internalEvents: internal}
	if raw != nil {
		task, err := decodeEvent(keyCurrentTask, raw)
		if err != nil {
			return nil, err
		}
		b.currentTask = &task
	}
	return b, nil
}

func decodeList(data map[string]any, key string) ([]event.Event, error) {
	raw, ok := data[key]
	if !ok {
		return nil, decodeError(key, "missing")
	}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []map[string]any:
		items = make([]any, len(v))
		for i, m := range v {
			items[i] = m
		}
	case nil:
		return nil, decodeError(key, "expected a list, got null")
	default:
		return nil, decodeError(key, "expected a list, got %T", raw)
	}

	events := make([]event.Event, 0, len(items))
	for i, item := range items {
		e, err := decodeEvent(fmt.Sprintf("%s[%d]", key, i), item)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func decodeEvent(path string, raw any) (event.Event, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return event.Event{}, decodeError(path, "expected an event mapping, got %T", raw)
	}

	var fields [3]string
	for i, name := range []string{"kind", "agent", "content"} {
		v, ok := m[name]
		if !ok {
			return event.Event{}, decodeError(path+"."+name, "missing")
		}
		s, ok := v.(string)
		if !ok {
			return event.Event{}, decodeError(path+"."+name, "expected a string, got %T", v)
		}
		fields[i] = s
	}
	return event.New(event.Kind(fields[0]), fields[1], fields[2]), nil
}

func decodeError(path, format string, args ...any) error {
	return errors.Newf(errors.CodeDecodeFailed, "%s: %s", path, fmt.Sprintf(format, args...))
}

// MarshalJSON encodes the representation.
func (b *Belief) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.ToRepresentation())
}

// UnmarshalJSON replaces b's logs and current task with the decoded ones.
// Registered actions are kept.
func (b *Belief) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return errors.Wrap(errors.CodeDecodeFailed, "invalid belief JSON", err)
	}

	decoded, err := FromRepresentation(m)
	if err != nil {
		return err
	}
	b.events = decoded.events
	b.internalEvents = decoded.internalEvents
	b.currentTask = decoded.currentTask
	return nil
}
