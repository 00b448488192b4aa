package action

import (
	"context"
	"fmt"

	"github.com/cadre-oss/sherpa/internal/provider"
)

// Deliberation lets the agent think about a task before committing to a step.
type Deliberation struct {
	Base
	role  string
	model model
}

// NewDeliberation creates the deliberation action.
func NewDeliberation(p provider.Provider, role string, maxTokens int) *Deliberation {
	return &Deliberation{
		Base: Base{
			ActionName:        "deliberation",
			ActionDescription: "Think through a task or question and write down the reasoning.",
			ActionArgs: []Argument{
				{Name: "task", Description: "what to think about"},
			},
		},
		role:  role,
		model: model{provider: p, maxTokens: maxTokens},
	}
}

func (a *Deliberation) Execute(ctx context.Context, args map[string]string) (string, error) {
	task, err := Require(a, args, "task")
	if err != nil {
		return "", err
	}

	thought, err := a.model.ask(ctx, a.role,
		fmt.Sprintf("Think step by step about the following and summarize your reasoning in a few sentences.\n\n%s", task))
	if err != nil {
		return "", fmt.Errorf("deliberation: %w", err)
	}
	return thought, nil
}
