package belief

import (
	"strings"

	"github.com/cadre-oss/sherpa/internal/action"
)

// SetActions replaces the registered actions.
func (b *Belief) SetActions(actions []action.Action) {
	b.actions = append([]action.Action(nil), actions...)
}

// Actions returns the registered actions in registration order.
func (b *Belief) Actions() []action.Action {
	return append([]action.Action(nil), b.actions...)
}

// ActionDescription lists every registered action, one per line.
func (b *Belief) ActionDescription() string {
	lines := make([]string, len(b.actions))
	for i, a := range b.actions {
		lines[i] = a.String()
	}
	return strings.Join(lines, "\n")
}

// GetAction returns the first registered action with the given name.
func (b *Belief) GetAction(name string) (action.Action, bool) {
	for _, a := range b.actions {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}
