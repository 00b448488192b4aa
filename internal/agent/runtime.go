package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cadre-oss/sherpa/internal/action"
	"github.com/cadre-oss/sherpa/internal/belief"
	"github.com/cadre-oss/sherpa/internal/config"
	sherpaErrors "github.com/cadre-oss/sherpa/internal/errors"
	"github.com/cadre-oss/sherpa/internal/event"
	"github.com/cadre-oss/sherpa/internal/provider"
	"github.com/cadre-oss/sherpa/internal/telemetry"
	"github.com/cadre-oss/sherpa/internal/token"
)

// userName is the agent field of events that come from the person driving the run.
const userName = "user"

// Runtime drives an agent's decision loop over its memory.
type Runtime struct {
	agent    *Agent
	provider provider.Provider
	counter  belief.TokenCounter
	logger   *telemetry.Logger
	metrics  *telemetry.Metrics
	bus      *event.Bus

	maxIterations int
	memoryTokens  int
	replyTokens   int
	temperature   float64
}

// NewRuntime creates a runtime using the configured provider.
func NewRuntime(cfg *config.Config, logger *telemetry.Logger) (*Runtime, error) {
	p, err := NewProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	return NewRuntimeWithProvider(cfg, p, logger)
}

// NewRuntimeWithProvider creates a runtime with an injected provider.
// This enables testing with mock providers.
func NewRuntimeWithProvider(cfg *config.Config, p provider.Provider, logger *telemetry.Logger) (*Runtime, error) {
	counter, err := token.FromConfig(cfg.Memory)
	if err != nil {
		return nil, err
	}

	agent := NewAgent(&cfg.Agent)

	actions, err := action.Build(cfg.Agent.Actions, action.Deps{
		Provider:        p,
		Role:            agent.Role(),
		MaxTokens:       cfg.Provider.MaxTokens,
		SearchResults:   cfg.Search.MaxResults,
		SearchUserAgent: cfg.Search.UserAgent,
	})
	if err != nil {
		return nil, err
	}
	_ = agent.memory.Mutate(func(b *belief.Belief) error {
		b.SetActions(actions)
		return nil
	})

	maxIterations := cfg.Agent.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 5
	}
	memoryTokens := cfg.Memory.MaxTokens
	if memoryTokens <= 0 {
		memoryTokens = belief.DefaultMaxTokens
	}

	return &Runtime{
		agent:         agent,
		provider:      p,
		counter:       counter,
		logger:        logger,
		metrics:       telemetry.NewMetrics(),
		maxIterations: maxIterations,
		memoryTokens:  memoryTokens,
		replyTokens:   cfg.Provider.MaxTokens,
		temperature:   cfg.Provider.Temperature,
	}, nil
}

// Run works on task until the agent finishes or the iteration limit is hit,
// and returns the final answer.
func (r *Runtime) Run(ctx context.Context, task string) (string, error) {
	r.logger.Info("Starting run", "agent", r.agent.Name(), "task", task)

	if err := r.observe(event.New(event.Task, userName, task), true); err != nil {
		return "", err
	}

	for i := 0; i < r.maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		r.logger.Debug("Agent iteration", "iteration", i+1)

		d, err := r.decide(ctx)
		if err != nil {
			var invalid *invalidDecision
			if !errors.As(err, &invalid) {
				return "", err
			}
			r.logger.Warn("Discarding decision", "error", invalid.err)
			if err := r.record(event.Feedback, fmt.Sprintf("Your last reply could not be used: %v. Reply with one JSON object.", invalid.err)); err != nil {
				return "", err
			}
			continue
		}

		if d.Action == finish {
			return r.finish(ctx, task, d)
		}

		if err := r.record(event.Action, d.String()); err != nil {
			return "", err
		}

		act, ok := r.lookup(d.Action)
		if !ok {
			r.logger.Warn("Unknown action", "action", d.Action)
			if err := r.record(event.Feedback, fmt.Sprintf("There is no action named %q.", d.Action)); err != nil {
				return "", err
			}
			continue
		}

		out, err := r.execute(ctx, act, d.Args)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if err := r.record(event.Feedback, fmt.Sprintf("Action %s failed: %v", act.Name(), err)); err != nil {
				return "", err
			}
			continue
		}
		if err := r.record(event.ActionOutput, out); err != nil {
			return "", err
		}
	}

	if _, ok := r.lookup("synthesis"); ok {
		r.logger.Warn("Iteration limit reached, writing answer from what was gathered",
			"max_iterations", r.maxIterations)
		return r.finish(ctx, task, decision{Action: finish})
	}

	return "", sherpaErrors.Newf(sherpaErrors.CodeMaxIterations,
		"max iterations (%d) exceeded", r.maxIterations).
		WithSuggestion("Raise agent.max_iterations or add the synthesis action")
}

// Feedback records user guidance for the next decision. It is safe to call
// while Run is in progress.
func (r *Runtime) Feedback(content string) error {
	ev := event.New(event.Feedback, userName, content)
	_ = r.agent.memory.Mutate(func(b *belief.Belief) error {
		b.Update(ev)
		b.UpdateInternal(ev.Kind, ev.Agent, ev.Content)
		return nil
	})
	return r.bus.Emit(ev)
}

// decide asks the model for the next step.
func (r *Runtime) decide(ctx context.Context) (decision, error) {
	var system, prompt string
	err := r.agent.memory.View(func(b *belief.Belief) error {
		taskContext, err := b.GetContext(r.counter, belief.WithMaxTokens(r.memoryTokens))
		if err != nil {
			return err
		}
		history := b.GetInternalHistory(r.counter, belief.WithMaxTokens(r.memoryTokens))
		system = r.agent.SystemPrompt(b.ActionDescription())
		prompt = stepPrompt(taskContext, history)
		return nil
	})
	if err != nil {
		return decision{}, err
	}
	r.metrics.IncContextBuilds()

	req := provider.UserPrompt(system, prompt)
	req.JSON = true
	req.MaxTokens = r.replyTokens
	req.Temperature = r.temperature

	r.metrics.IncAPIRequests()
	start := time.Now()
	resp, err := r.provider.Complete(ctx, req)
	r.metrics.RecordAPILatency(time.Since(start))
	if err != nil {
		if ctx.Err() != nil || sherpaErrors.AsCode(err) != "" {
			return decision{}, err
		}
		return decision{}, sherpaErrors.Wrap(sherpaErrors.CodeProviderError, "decision request failed", err)
	}

	r.logger.Debug("Provider response",
		"stop_reason", resp.StopReason,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	r.metrics.IncDecisions()

	d, err := parseDecision(resp.Content)
	if err != nil {
		return decision{}, &invalidDecision{err: err}
	}
	return d, nil
}

// finish writes the final answer and records it as a result.
func (r *Runtime) finish(ctx context.Context, task string, d decision) (string, error) {
	var (
		synth       action.Action
		ok          bool
		taskContext string
		history     string
	)
	_ = r.agent.memory.View(func(b *belief.Belief) error {
		synth, ok = b.GetAction("synthesis")
		taskContext, _ = b.GetContext(r.counter, belief.WithMaxTokens(r.memoryTokens))
		history = b.GetHistoriesExcludingTypes(r.counter, []event.Kind{event.Task}, belief.WithMaxTokens(r.memoryTokens))
		return nil
	})

	answer := d.Answer
	if ok {
		out, err := r.execute(ctx, synth, map[string]string{
			"task":    task,
			"context": taskContext,
			"history": history,
		})
		if err != nil {
			return "", fmt.Errorf("final answer: %w", err)
		}
		answer = out
	}
	if answer == "" {
		answer = history
	}

	if err := r.observe(event.New(event.Result, r.agent.Name(), answer), false); err != nil {
		return "", err
	}
	r.logger.Info("Run finished", "agent", r.agent.Name())
	return answer, nil
}

func (r *Runtime) execute(ctx context.Context, act action.Action, args map[string]string) (string, error) {
	r.logger.Debug("Executing action", "action", act.Name())
	r.metrics.IncActionCalls()

	start := time.Now()
	out, err := act.Execute(ctx, args)
	r.metrics.RecordActionLatency(time.Since(start))

	if err != nil {
		r.metrics.IncActionFailures()
		r.logger.Warn("Action execution failed", "action", act.Name(), "error", err)
		return "", err
	}
	r.logger.Debug("Action execution succeeded", "action", act.Name(), "result_length", len(out))
	return out, nil
}

func (r *Runtime) lookup(name string) (action.Action, bool) {
	var (
		act action.Action
		ok  bool
	)
	_ = r.agent.memory.View(func(b *belief.Belief) error {
		act, ok = b.GetAction(name)
		return nil
	})
	return act, ok
}

// observe records an observable event and emits it if it was new.
func (r *Runtime) observe(ev event.Event, current bool) error {
	added := false
	_ = r.agent.memory.Mutate(func(b *belief.Belief) error {
		added = b.Update(ev)
		if current {
			b.SetCurrentTask(ev)
		}
		return nil
	})
	if !added {
		return nil
	}
	return r.bus.Emit(ev)
}

// record appends an internal event and emits it.
func (r *Runtime) record(kind event.Kind, content string) error {
	ev := event.New(kind, r.agent.Name(), content)
	_ = r.agent.memory.Mutate(func(b *belief.Belief) error {
		b.UpdateInternal(ev.Kind, ev.Agent, ev.Content)
		return nil
	})
	return r.bus.Emit(ev)
}

// Restore replaces the agent's memory with b, keeping the configured actions.
// It must not be called while Run is in progress.
func (r *Runtime) Restore(b *belief.Belief) {
	_ = r.agent.memory.Mutate(func(current *belief.Belief) error {
		b.SetActions(current.Actions())
		return nil
	})
	r.agent.memory = belief.NewGuarded(b)
}

// SetEventBus attaches the bus every recorded event is emitted on.
func (r *Runtime) SetEventBus(bus *event.Bus) {
	r.bus = bus
}

// GetAgent returns the underlying agent
func (r *Runtime) GetAgent() *Agent {
	return r.agent
}

// GetMetrics returns the runtime metrics
func (r *Runtime) GetMetrics() *telemetry.Metrics {
	return r.metrics
}

// SetMaxIterations sets the maximum number of decisions per run
func (r *Runtime) SetMaxIterations(n int) {
	r.maxIterations = n
}

// SetActions replaces the configured actions.
func (r *Runtime) SetActions(actions []action.Action) {
	_ = r.agent.memory.Mutate(func(b *belief.Belief) error {
		b.SetActions(actions)
		return nil
	})
}

type invalidDecision struct {
	err error
}

func (e *invalidDecision) Error() string { return e.err.Error() }
