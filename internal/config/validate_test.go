package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sherpaErrors "github.com/cadre-oss/sherpa/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "unknown action",
			mutate:  func(c *Config) { c.Agent.Actions = []string{"teleport"} },
			wantErr: "unknown action: teleport",
		},
		{
			name:    "duplicate action",
			mutate:  func(c *Config) { c.Agent.Actions = []string{"search", "search"} },
			wantErr: "duplicate action: search",
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.Agent.Timeout = "soon" },
			wantErr: "invalid agent.timeout",
		},
		{
			name:    "bad token counter",
			mutate:  func(c *Config) { c.Memory.TokenCounter = "bytes" },
			wantErr: "invalid memory.token_counter: bytes",
		},
		{
			name:    "negative budget",
			mutate:  func(c *Config) { c.Memory.MaxTokens = -1 },
			wantErr: "memory.max_tokens must not be negative",
		},
		{
			name:    "unsupported provider",
			mutate:  func(c *Config) { c.Provider.Name = "llama" },
			wantErr: "unsupported provider: llama",
		},
		{
			name:    "unsupported driver",
			mutate:  func(c *Config) { c.Checkpoint.Driver = "postgres" },
			wantErr: "unsupported checkpoint driver: postgres",
		},
		{
			name: "webhook without url",
			mutate: func(c *Config) {
				c.Hooks.Hooks = []HookConfig{{Name: "notify", Type: "webhook"}}
			},
			wantErr: "webhook hook requires url",
		},
		{
			name: "shell without command",
			mutate: func(c *Config) {
				c.Hooks.Hooks = []HookConfig{{Name: "run", Type: "shell"}}
			},
			wantErr: "shell hook requires command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, sherpaErrors.CodeConfigInvalid, sherpaErrors.AsCode(err))
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Provider.Name = "llama"
	cfg.Logging.Level = "loud"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider: llama")
	assert.Contains(t, err.Error(), "invalid logging.level: loud")
}

func TestAgentConfig_ParsedTimeout(t *testing.T) {
	a := AgentConfig{}
	d, err := a.ParsedTimeout()
	require.NoError(t, err)
	assert.Equal(t, "10m0s", d.String())

	a.Timeout = "90s"
	d, err = a.ParsedTimeout()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", d.String())
}
