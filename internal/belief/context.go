package belief

import (
	"strings"

	"github.com/cadre-oss/sherpa/internal/errors"
	"github.com/cadre-oss/sherpa/internal/event"
)

// DefaultMaxTokens is the budget used when no WithMaxTokens option is given.
const DefaultMaxTokens = 4000

// TokenCounter measures text in tokens.
type TokenCounter func(string) int

// Option adjusts a context reconstruction.
type Option func(*options)

type options struct {
	maxTokens int
}

// WithMaxTokens sets the token budget for one reconstruction.
func WithMaxTokens(n int) Option {
	return func(o *options) { o.maxTokens = n }
}

func buildOptions(opts []Option) options {
	o := options{maxTokens: DefaultMaxTokens}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// GetContext renders the task and result events, newest first until the
// budget is passed, in chronological order with a trailing newline per event.
// The event that pushes the text over budget is still included.
//
// It fails with NO_TASK_CONTEXT when there are no task or result events.
func (b *Belief) GetContext(count TokenCounter, opts ...Option) (string, error) {
	o := buildOptions(opts)

	context := ""
	for i := len(b.events) - 1; i >= 0; i-- {
		e := b.events[i]
		if e.Kind != event.Task && e.Kind != event.Result {
			continue
		}
		context = e.Content + "\n" + context
		if count(context) > o.maxTokens {
			break
		}
	}

	if context == "" {
		return "", errors.New(errors.CodeNoTaskContext, "no task or result events recorded").
			WithSuggestion("record the task with Update before building context")
	}
	return context, nil
}

// GetInternalHistory renders the most recent internal events, oldest first,
// one per line. Each event is counted on its own and the event that passes the
// budget is still included. An empty log yields "".
func (b *Belief) GetInternalHistory(count TokenCounter, opts ...Option) string {
	o := buildOptions(opts)

	var recent []string
	used := 0
	for i := len(b.internalEvents) - 1; i >= 0; i-- {
		content := b.internalEvents[i].Content
		recent = append(recent, content)
		used += count(content)
		if used > o.maxTokens {
			break
		}
	}

	reverse(recent)
	return strings.Join(recent, "\n")
}

// GetHistoriesExcludingTypes renders recent internal events whose kind is not
// in exclude. Feedback is gathered apart from everything else and emitted
// last. Within each group repeated content appears once.
//
// Every visited event counts against the budget, excluded ones included.
func (b *Belief) GetHistoriesExcludingTypes(count TokenCounter, exclude []event.Kind, opts ...Option) string {
	o := buildOptions(opts)

	skip := make(map[event.Kind]bool, len(exclude))
	for _, k := range exclude {
		skip[k] = true
	}

	var results, feedback []string
	used := 0
	for i := len(b.internalEvents) - 1; i >= 0; i-- {
		e := b.internalEvents[i]
		if !skip[e.Kind] {
			if e.Kind == event.Feedback {
				feedback = append(feedback, e.Content)
			} else {
				results = append(results, e.Content)
			}
		}
		used += count(e.Content)
		if used > o.maxTokens {
			break
		}
	}

	reverse(results)
	parts := make([]string, 0, 2)
	if len(results) > 0 {
		parts = append(parts, strings.Join(unique(results), "\n"))
	}
	if len(feedback) > 0 {
		parts = append(parts, strings.Join(unique(feedback), "\n"))
	}
	return strings.Join(parts, "\n")
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// unique drops repeated strings, keeping the first occurrence.
func unique(s []string) []string {
	seen := make(map[string]bool, len(s))
	out := s[:0]
	for _, v := range s {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
