package agent

import (
	"github.com/cadre-oss/sherpa/internal/belief"
	"github.com/cadre-oss/sherpa/internal/config"
)

// Agent is a named decision maker with its own memory.
type Agent struct {
	config *config.AgentConfig
	memory *belief.Guarded
}

// NewAgent creates an agent with an empty memory.
func NewAgent(cfg *config.AgentConfig) *Agent {
	return &Agent{
		config: cfg,
		memory: belief.NewGuarded(belief.New()),
	}
}

// Name returns the agent name
func (a *Agent) Name() string {
	return a.config.Name
}

// Description returns the agent description
func (a *Agent) Description() string {
	return a.config.Description
}

// Memory returns the agent's memory
func (a *Agent) Memory() *belief.Guarded {
	return a.memory
}

// SystemPrompt describes the agent and the action protocol. actions is the
// capability listing from the agent's memory.
func (a *Agent) SystemPrompt(actions string) string {
	prompt := "You are " + a.config.Name + ".\n"
	if a.config.Description != "" {
		prompt += a.config.Description + "\n"
	}
	prompt += "\nYou work on a task one action at a time. Available actions:\n"
	prompt += actions + "\n\n"

	prompt += "Reply with a single JSON object and nothing else:\n"
	prompt += `- {"action": "<name>", "args": {"<arg>": "<value>"}} to run an action` + "\n"
	prompt += `- {"action": "finish"} once the steps so far are enough to answer the task` + "\n"
	return prompt
}

// Role is the system prompt given to actions that write on the agent's behalf.
func (a *Agent) Role() string {
	role := "You are " + a.config.Name + "."
	if a.config.Description != "" {
		role += " " + a.config.Description
	}
	return role
}
