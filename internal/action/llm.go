package action

import (
	"context"
	"fmt"
	"strings"

	"github.com/cadre-oss/sherpa/internal/provider"
)

// model wraps the provider calls shared by the LLM-backed actions.
type model struct {
	provider  provider.Provider
	maxTokens int
}

func (m model) ask(ctx context.Context, system, prompt string) (string, error) {
	if m.provider == nil {
		return "", fmt.Errorf("no language model configured")
	}

	req := provider.UserPrompt(system, prompt)
	req.MaxTokens = m.maxTokens

	resp, err := m.provider.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}
