package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/cadre-oss/sherpa/internal/config"
)

// Hook processes events as the agent appends them.
type Hook interface {
	// Name returns the hook's identifier.
	Name() string
	// Matches returns true if the hook should handle this kind.
	Matches(k Kind) bool
	// IsBlocking returns true if the agent should wait for this hook.
	IsBlocking() bool
	// Handle processes an event. For blocking hooks, an error stops the agent.
	Handle(ev Event) error
}

type baseHook struct {
	name     string
	kinds    []Kind
	blocking bool
}

func (h *baseHook) Name() string     { return h.name }
func (h *baseHook) IsBlocking() bool { return h.blocking }
func (h *baseHook) Matches(k Kind) bool {
	if len(h.kinds) == 0 {
		return true
	}
	for _, want := range h.kinds {
		if want == k {
			return true
		}
	}
	return false
}

// ShellHook executes a shell command with the event in environment variables.
//
// Environment variables set:
//   - SHERPA_EVENT_KIND: the event kind
//   - SHERPA_EVENT_AGENT: the originating agent
//   - SHERPA_EVENT_JSON: JSON-encoded event
type ShellHook struct {
	baseHook
	Command string
}

func NewShellHook(name, command string, kinds []Kind, blocking bool) *ShellHook {
	return &ShellHook{
		baseHook: baseHook{name: name, kinds: kinds, blocking: blocking},
		Command:  command,
	}
}

func (h *ShellHook) Handle(ev Event) error {
	eventJSON, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	cmd := exec.Command("sh", "-c", h.Command)
	cmd.Env = append(os.Environ(),
		"SHERPA_EVENT_KIND="+string(ev.Kind),
		"SHERPA_EVENT_AGENT="+ev.Agent,
		"SHERPA_EVENT_JSON="+string(eventJSON),
	)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("shell hook %s failed: %w", h.name, err)
	}
	return nil
}

// WebhookHook POSTs the event as JSON to a URL.
type WebhookHook struct {
	baseHook
	URL     string
	Timeout time.Duration
}

func NewWebhookHook(name, url string, kinds []Kind, blocking bool) *WebhookHook {
	return &WebhookHook{
		baseHook: baseHook{name: name, kinds: kinds, blocking: blocking},
		URL:      url,
		Timeout:  10 * time.Second,
	}
}

func (h *WebhookHook) Handle(ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	client := &http.Client{Timeout: h.Timeout}
	resp, err := client.Post(h.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook %s failed: %w", h.name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook %s returned status %d", h.name, resp.StatusCode)
	}
	return nil
}

// LogHook logs events at the configured level. Always non-blocking.
type LogHook struct {
	baseHook
	logger Logger
	level  string // "debug", "info", "warn"
}

// FullLogger extends Logger with the levels LogHook can write at.
type FullLogger interface {
	Logger
	Info(msg string, keyvals ...interface{})
	Debug(msg string, keyvals ...interface{})
}

func NewLogHook(name string, kinds []Kind, logger Logger, level string) *LogHook {
	if level == "" {
		level = "info"
	}
	return &LogHook{
		baseHook: baseHook{name: name, kinds: kinds, blocking: false},
		logger:   logger,
		level:    level,
	}
}

func (h *LogHook) Handle(ev Event) error {
	msg := fmt.Sprintf("[event] %s", ev.Kind)
	keyvals := []interface{}{"kind", string(ev.Kind), "agent", ev.Agent, "content_length", len(ev.Content)}

	if fl, ok := h.logger.(FullLogger); ok {
		switch h.level {
		case "debug":
			fl.Debug(msg, keyvals...)
		case "warn":
			fl.Warn(msg, keyvals...)
		default:
			fl.Info(msg, keyvals...)
		}
		return nil
	}
	h.logger.Warn(msg, keyvals...)
	return nil
}

// HooksFromConfig builds hooks from the hooks section of sherpa.yaml.
func HooksFromConfig(cfg config.HooksConfig, logger Logger) ([]Hook, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	hooks := make([]Hook, 0, len(cfg.Hooks))
	for _, hc := range cfg.Hooks {
		kinds := make([]Kind, len(hc.Events))
		for i, k := range hc.Events {
			kinds[i] = Kind(k)
		}

		switch hc.Type {
		case "shell":
			hooks = append(hooks, NewShellHook(hc.Name, hc.Command, kinds, hc.Blocking))
		case "webhook":
			hooks = append(hooks, NewWebhookHook(hc.Name, hc.URL, kinds, hc.Blocking))
		case "log":
			hooks = append(hooks, NewLogHook(hc.Name, kinds, logger, hc.Level))
		default:
			return nil, fmt.Errorf("hook %s: unknown type %q", hc.Name, hc.Type)
		}
	}
	return hooks, nil
}
