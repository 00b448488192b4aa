// Package event defines the records an agent's memory is built from and the
// bus that fans them out to hooks.
package event

// Kind tags what an Event records. Any string is a valid Kind; the set below is
// shared verbatim by every component that builds events and by serialized
// checkpoints, so renaming one breaks stored state.
type Kind string

const (
	Task          Kind = "task"
	Result        Kind = "result"
	Action        Kind = "action"
	ActionOutput  Kind = "action_output"
	Feedback      Kind = "feedback"
	ReasoningStep Kind = "reasoning-step"
	Planning      Kind = "planning"
	UserInput     Kind = "user_input"
)

// Event is one immutable record of something that happened.
type Event struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Agent   string `json:"agent" yaml:"agent"`
	Content string `json:"content" yaml:"content"`
}

// New creates an event.
func New(kind Kind, agent, content string) Event {
	return Event{Kind: kind, Agent: agent, Content: content}
}

// Equal reports whether all three fields match.
func (e Event) Equal(other Event) bool {
	return e == other
}
