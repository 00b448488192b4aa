package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// finish is the reserved action name that ends the loop.
const finish = "finish"

// decision is the model's choice for one step.
type decision struct {
	Action string            `json:"action"`
	Args   map[string]string `json:"args,omitempty"`
	Answer string            `json:"answer,omitempty"`
}

// String is the form recorded in memory.
func (d decision) String() string {
	data, err := json.Marshal(d)
	if err != nil {
		return d.Action
	}
	return string(data)
}

// parseDecision extracts the JSON object from a model reply. Replies wrapped in
// prose or code fences are accepted; argument values of any JSON type are
// converted to strings.
func parseDecision(reply string) (decision, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return decision{}, fmt.Errorf("no JSON object in reply %q", reply)
	}

	var raw struct {
		Action string         `json:"action"`
		Args   map[string]any `json:"args"`
		Answer string         `json:"answer"`
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return decision{}, fmt.Errorf("invalid decision JSON: %w", err)
	}

	d := decision{
		Action: strings.TrimSpace(raw.Action),
		Answer: raw.Answer,
	}
	if d.Action == "" {
		return decision{}, fmt.Errorf("decision has no action")
	}
	if len(raw.Args) > 0 {
		d.Args = make(map[string]string, len(raw.Args))
		for k, v := range raw.Args {
			switch v := v.(type) {
			case string:
				d.Args[k] = v
			case nil:
			default:
				data, _ := json.Marshal(v)
				d.Args[k] = string(data)
			}
		}
	}
	return d, nil
}

// stepPrompt is the user turn for one decision.
func stepPrompt(taskContext, history string) string {
	var sb strings.Builder
	sb.WriteString("Task:\n")
	sb.WriteString(taskContext)
	sb.WriteString("\nSteps so far:\n")
	if history == "" {
		sb.WriteString("(none)\n")
	} else {
		sb.WriteString(history)
		sb.WriteString("\n")
	}
	sb.WriteString("\nWhat is the next action?")
	return sb.String()
}
