package action

import (
	"context"
	"fmt"
	"strings"

	"github.com/cadre-oss/sherpa/internal/provider"
)

// Synthesis writes the final answer from what the agent has gathered.
type Synthesis struct {
	Base
	role  string
	model model
}

// NewSynthesis creates the synthesis action. role describes the agent and
// becomes the system prompt.
func NewSynthesis(p provider.Provider, role string, maxTokens int) *Synthesis {
	return &Synthesis{
		Base: Base{
			ActionName:        "synthesis",
			ActionDescription: "Write the final answer to the task from the gathered context and history.",
			ActionArgs: []Argument{
				{Name: "task", Description: "the task to answer"},
				{Name: "context", Description: "background for the task"},
				{Name: "history", Description: "what has been found so far"},
			},
		},
		role:  role,
		model: model{provider: p, maxTokens: maxTokens},
	}
}

func (a *Synthesis) Execute(ctx context.Context, args map[string]string) (string, error) {
	task, err := Require(a, args, "task")
	if err != nil {
		return "", err
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Task: %s\n", task)
	if c := strings.TrimSpace(args["context"]); c != "" {
		fmt.Fprintf(&prompt, "\nContext:\n%s\n", c)
	}
	if h := strings.TrimSpace(args["history"]); h != "" {
		fmt.Fprintf(&prompt, "\nFindings:\n%s\n", h)
	}
	prompt.WriteString("\nUsing only the information above, write a complete answer to the task.")

	answer, err := a.model.ask(ctx, a.role, prompt.String())
	if err != nil {
		return "", fmt.Errorf("synthesis: %w", err)
	}
	return answer, nil
}
