// Package action holds the capabilities an agent can choose between on each
// decision. The set is closed: every Action embeds Base, and the memory only
// ever sees them through the Action interface.
package action

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Action is one pluggable agent capability.
type Action interface {
	// Name is the identifier the model uses to pick this action.
	Name() string
	// Description says what the action does.
	Description() string
	// Args lists the arguments Execute reads, in display order.
	Args() []Argument
	// String renders the capability listing line shown to the model.
	String() string
	// Execute runs the action.
	Execute(ctx context.Context, args map[string]string) (string, error)

	sealed()
}

// Argument documents one named input of an action.
type Argument struct {
	Name        string
	Description string
}

// Base carries the descriptor shared by every action and seals the interface.
type Base struct {
	ActionName        string
	ActionDescription string
	ActionArgs        []Argument
}

func (b Base) Name() string        { return b.ActionName }
func (b Base) Description() string { return b.ActionDescription }
func (b Base) Args() []Argument    { return b.ActionArgs }
func (Base) sealed()               {}

// String renders the action as a JSON-like descriptor:
//
//	{"name": "search", "description": "...", "args": {"query": "..."}}
func (b Base) String() string {
	var sb strings.Builder
	sb.WriteString(`{"name": `)
	sb.WriteString(quote(b.ActionName))
	sb.WriteString(`, "description": `)
	sb.WriteString(quote(b.ActionDescription))
	sb.WriteString(`, "args": {`)
	for i, a := range b.ActionArgs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quote(a.Name))
		sb.WriteString(": ")
		sb.WriteString(quote(a.Description))
	}
	sb.WriteString("}}")
	return sb.String()
}

func quote(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("%q", s)
	}
	return string(data)
}

// Require returns the named argument or an error naming the action when it is
// missing or blank.
func Require(a Action, args map[string]string, name string) (string, error) {
	v := strings.TrimSpace(args[name])
	if v == "" {
		return "", fmt.Errorf("%s: missing argument %q", a.Name(), name)
	}
	return v, nil
}
