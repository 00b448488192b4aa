package config

import (
	"fmt"
	"strings"

	sherpaErrors "github.com/cadre-oss/sherpa/internal/errors"
)

var (
	validActions = map[string]bool{
		"search":       true,
		"planning":     true,
		"synthesis":    true,
		"arithmetic":   true,
		"deliberation": true,
	}
	validCounters  = map[string]bool{"estimate": true, "words": true, "tiktoken": true}
	validProviders = map[string]bool{"anthropic": true, "openai": true}
	validDrivers   = map[string]bool{"sqlite": true, "memory": true}
	validLevels    = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats   = map[string]bool{"text": true, "json": true}
	validHookTypes = map[string]bool{"shell": true, "webhook": true, "log": true}
)

// Validate checks a defaulted configuration and reports every problem at once.
func Validate(cfg *Config) error {
	var errors []string

	if cfg.Agent.MaxIterations < 0 {
		errors = append(errors, "agent.max_iterations must not be negative")
	}
	seen := make(map[string]bool, len(cfg.Agent.Actions))
	for _, name := range cfg.Agent.Actions {
		if !validActions[name] {
			errors = append(errors, fmt.Sprintf("unknown action: %s", name))
		}
		if seen[name] {
			errors = append(errors, fmt.Sprintf("duplicate action: %s", name))
		}
		seen[name] = true
	}
	if _, err := cfg.Agent.ParsedTimeout(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid agent.timeout: %s", cfg.Agent.Timeout))
	}

	if cfg.Memory.MaxTokens < 0 {
		errors = append(errors, "memory.max_tokens must not be negative")
	}
	if !validCounters[cfg.Memory.TokenCounter] {
		errors = append(errors, fmt.Sprintf("invalid memory.token_counter: %s", cfg.Memory.TokenCounter))
	}

	if !validProviders[cfg.Provider.Name] {
		errors = append(errors, fmt.Sprintf("unsupported provider: %s", cfg.Provider.Name))
	}
	if !validDrivers[cfg.Checkpoint.Driver] {
		errors = append(errors, fmt.Sprintf("unsupported checkpoint driver: %s", cfg.Checkpoint.Driver))
	}
	if !validLevels[cfg.Logging.Level] {
		errors = append(errors, fmt.Sprintf("invalid logging.level: %s", cfg.Logging.Level))
	}
	if !validFormats[cfg.Logging.Format] {
		errors = append(errors, fmt.Sprintf("invalid logging.format: %s", cfg.Logging.Format))
	}

	for i, h := range cfg.Hooks.Hooks {
		if h.Name == "" {
			errors = append(errors, fmt.Sprintf("hooks[%d]: name is required", i))
		}
		if !validHookTypes[h.Type] {
			errors = append(errors, fmt.Sprintf("hooks[%d]: invalid type: %s", i, h.Type))
		}
		if h.Type == "shell" && h.Command == "" {
			errors = append(errors, fmt.Sprintf("hooks[%d]: shell hook requires command", i))
		}
		if h.Type == "webhook" && h.URL == "" {
			errors = append(errors, fmt.Sprintf("hooks[%d]: webhook hook requires url", i))
		}
	}

	if len(errors) > 0 {
		return sherpaErrors.New(sherpaErrors.CodeConfigInvalid,
			fmt.Sprintf("config validation failed: %s", strings.Join(errors, "; "))).
			WithSuggestion("Fix the listed fields in sherpa.yaml")
	}
	return nil
}
