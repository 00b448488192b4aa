package action

import (
	"context"
	"fmt"

	"github.com/cadre-oss/sherpa/internal/provider"
)

const planningSystem = `You are a planner. Break the task into a short numbered list of concrete steps.
Each step is one line. Do not solve the task.`

// Planning asks the model for a step-by-step plan.
type Planning struct {
	Base
	model model
}

// NewPlanning creates the planning action.
func NewPlanning(p provider.Provider, maxTokens int) *Planning {
	return &Planning{
		Base: Base{
			ActionName:        "planning",
			ActionDescription: "Break a complex task into an ordered plan of smaller steps.",
			ActionArgs: []Argument{
				{Name: "task", Description: "the task to plan"},
			},
		},
		model: model{provider: p, maxTokens: maxTokens},
	}
}

func (a *Planning) Execute(ctx context.Context, args map[string]string) (string, error) {
	task, err := Require(a, args, "task")
	if err != nil {
		return "", err
	}

	plan, err := a.model.ask(ctx, planningSystem, fmt.Sprintf("Task: %s\n\nPlan:", task))
	if err != nil {
		return "", fmt.Errorf("planning: %w", err)
	}
	return plan, nil
}
