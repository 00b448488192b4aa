package config

import "time"

// Config represents the project configuration (sherpa.yaml)
type Config struct {
	Name       string           `yaml:"name" json:"name"`
	Version    string           `yaml:"version" json:"version"`
	Agent      AgentConfig      `yaml:"agent" json:"agent"`
	Memory     MemoryConfig     `yaml:"memory" json:"memory"`
	Provider   ProviderConfig   `yaml:"provider" json:"provider"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
	Checkpoint CheckpointConfig `yaml:"checkpoint" json:"checkpoint"`
	Hooks      HooksConfig      `yaml:"hooks" json:"hooks"`
}

// AgentConfig describes the agent driving the decision loop
type AgentConfig struct {
	Name          string   `yaml:"name" json:"name"`
	Description   string   `yaml:"description" json:"description"`
	MaxIterations int      `yaml:"max_iterations" json:"max_iterations"`
	Actions       []string `yaml:"actions" json:"actions"` // search, planning, synthesis, arithmetic, deliberation
	Timeout       string   `yaml:"timeout" json:"timeout"` // e.g. "10m"
}

// MemoryConfig configures context reconstruction
type MemoryConfig struct {
	MaxTokens    int    `yaml:"max_tokens" json:"max_tokens"`
	TokenCounter string `yaml:"token_counter" json:"token_counter"`           // estimate, words, tiktoken
	Encoding     string `yaml:"encoding,omitempty" json:"encoding,omitempty"` // tiktoken encoding name
}

// ProviderConfig configures the LLM provider
type ProviderConfig struct {
	Name        string  `yaml:"name" json:"name"` // anthropic, openai
	Model       string  `yaml:"model" json:"model"`
	APIKey      string  `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	MaxRetries  int     `yaml:"max_retries" json:"max_retries"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"` // completion budget per call
	Temperature float64 `yaml:"temperature" json:"temperature"`
}

// SearchConfig configures the web search action
type SearchConfig struct {
	MaxResults int    `yaml:"max_results" json:"max_results"`
	UserAgent  string `yaml:"user_agent" json:"user_agent"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // text, json
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// CheckpointConfig configures checkpoint storage
type CheckpointConfig struct {
	Driver string `yaml:"driver" json:"driver"` // sqlite, memory
	Path   string `yaml:"path" json:"path"`
}

// HooksConfig configures event hooks.
type HooksConfig struct {
	Enabled bool         `yaml:"enabled" json:"enabled"`
	Hooks   []HookConfig `yaml:"hooks" json:"hooks"`
}

// HookConfig defines a single hook.
type HookConfig struct {
	Name     string   `yaml:"name" json:"name"`
	Type     string   `yaml:"type" json:"type"`     // shell, webhook, log
	Events   []string `yaml:"events" json:"events"` // event kinds to match
	Blocking bool     `yaml:"blocking" json:"blocking"`
	Command  string   `yaml:"command,omitempty" json:"command,omitempty"`
	URL      string   `yaml:"url,omitempty" json:"url,omitempty"`
	Level    string   `yaml:"level,omitempty" json:"level,omitempty"`
}

// ParsedTimeout converts the agent timeout string to time.Duration
func (a *AgentConfig) ParsedTimeout() (time.Duration, error) {
	if a.Timeout == "" {
		return 10 * time.Minute, nil
	}
	return time.ParseDuration(a.Timeout)
}
