package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadre-oss/sherpa/internal/action"
	"github.com/cadre-oss/sherpa/internal/belief"
	"github.com/cadre-oss/sherpa/internal/config"
	sherpaErrors "github.com/cadre-oss/sherpa/internal/errors"
	"github.com/cadre-oss/sherpa/internal/event"
	"github.com/cadre-oss/sherpa/internal/testutil"
)

func newTestRuntime(t *testing.T, h *testutil.TestHarness) *Runtime {
	t.Helper()
	r, err := NewRuntimeWithProvider(h.Config, h.Provider, h.Logger)
	require.NoError(t, err)
	r.SetEventBus(h.EventBus)
	return r
}

func snapshot(t *testing.T, r *Runtime) *belief.Belief {
	t.Helper()
	var out *belief.Belief
	require.NoError(t, r.GetAgent().Memory().View(func(b *belief.Belief) error {
		var err error
		out, err = belief.FromRepresentation(b.ToRepresentation())
		return err
	}))
	return out
}

func TestRuntime_FinishWithSynthesis(t *testing.T) {
	h := testutil.NewTestHarness(t)
	h.SetResponses(`{"action": "finish"}`, "Paris is the capital of France.")
	r := newTestRuntime(t, h)

	answer, err := r.Run(context.Background(), "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", answer)
	assert.Equal(t, 2, h.Provider.CallCount())

	b := snapshot(t, r)
	task, ok := b.CurrentTask()
	require.True(t, ok)
	assert.Equal(t, event.New(event.Task, "user", "What is the capital of France?"), task)
	assert.Equal(t, []event.Event{
		task,
		event.New(event.Result, "tester", "Paris is the capital of France."),
	}, b.Events())

	decide := h.Provider.Calls[0]
	assert.True(t, decide.JSON)
	assert.Contains(t, decide.System, "You are tester.")
	assert.Contains(t, decide.System, `"name": "synthesis"`)
	assert.Contains(t, decide.Messages[0].Content, "What is the capital of France?\n")
	assert.Contains(t, decide.Messages[0].Content, "(none)")

	synth := h.Provider.Calls[1]
	assert.Equal(t, "You are tester. an agent under test", synth.System)
}

func TestRuntime_ActionLoop(t *testing.T) {
	h := testutil.NewTestHarness(t)
	h.SetResponses(
		"```json\n{\"action\": \"lookup\", \"args\": {\"input\": \"france\"}}\n```",
		`{"action": "finish"}`,
	)
	r := newTestRuntime(t, h)

	lookup := testutil.NewMockAction("lookup", "France: capital Paris")
	synthesis := testutil.NewMockAction("synthesis", "Paris.")
	r.SetActions([]action.Action{lookup, synthesis})

	answer, err := r.Run(context.Background(), "capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer)

	require.Equal(t, 1, lookup.ExecutionCount())
	assert.Equal(t, map[string]string{"input": "france"}, lookup.CallArgs[0])

	require.Equal(t, 1, synthesis.ExecutionCount())
	args := synthesis.CallArgs[0]
	assert.Equal(t, "capital of France?", args["task"])
	assert.Equal(t, "capital of France?\n", args["context"])
	assert.Equal(t, `{"action":"lookup","args":{"input":"france"}}`+"\nFrance: capital Paris", args["history"])

	// The second decision sees the first step.
	assert.Contains(t, h.Provider.Calls[1].Messages[0].Content, "France: capital Paris")

	b := snapshot(t, r)
	require.Len(t, b.GetByType(event.Action), 1)
	require.Len(t, b.GetByType(event.ActionOutput), 1)

	assert.Equal(t, []event.Kind{event.Task, event.Action, event.ActionOutput, event.Result}, kinds(h.Events()))

	summary := r.GetMetrics().GetSummary()
	assert.EqualValues(t, 2, summary["decisions"])
	assert.EqualValues(t, 2, summary["action_calls"])
}

func kinds(events []event.Event) []event.Kind {
	out := make([]event.Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestRuntime_UnknownActionBecomesFeedback(t *testing.T) {
	h := testutil.NewTestHarness(t)
	h.SetResponses(`{"action": "teleport"}`, `{"action": "finish", "answer": "gave up"}`)
	r := newTestRuntime(t, h)
	r.SetActions(nil)

	answer, err := r.Run(context.Background(), "go to the moon")
	require.NoError(t, err)
	assert.Equal(t, "gave up", answer)

	feedback := snapshot(t, r).GetByType(event.Feedback)
	require.Len(t, feedback, 1)
	assert.Contains(t, feedback[0].Content, `no action named "teleport"`)
	assert.Contains(t, h.Provider.Calls[1].Messages[0].Content, "teleport")
}

func TestRuntime_InvalidReplyBecomesFeedback(t *testing.T) {
	h := testutil.NewTestHarness(t)
	h.SetResponses("I think I should search.", `{"action": "finish", "answer": "ok"}`)
	r := newTestRuntime(t, h)
	r.SetActions(nil)

	answer, err := r.Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, "ok", answer)
	assert.Len(t, snapshot(t, r).GetByType(event.Feedback), 1)
	assert.EqualValues(t, 2, r.GetMetrics().GetSummary()["decisions"])
}

func TestRuntime_ActionFailureBecomesFeedback(t *testing.T) {
	h := testutil.NewTestHarness(t)
	h.SetResponses(`{"action": "broken"}`, `{"action": "finish", "answer": "done"}`)
	r := newTestRuntime(t, h)

	broken := testutil.NewMockAction("broken", "")
	broken.ShouldFail = true
	r.SetActions([]action.Action{broken})

	_, err := r.Run(context.Background(), "task")
	require.NoError(t, err)

	feedback := snapshot(t, r).GetByType(event.Feedback)
	require.Len(t, feedback, 1)
	assert.Contains(t, feedback[0].Content, "Action broken failed")
	assert.EqualValues(t, 1, r.GetMetrics().GetSummary()["action_failures"])
}

func TestRuntime_FinishWithoutSynthesisUsesHistory(t *testing.T) {
	h := testutil.NewTestHarness(t)
	h.SetResponses(`{"action": "lookup"}`, `{"action": "finish"}`)
	r := newTestRuntime(t, h)
	r.SetActions([]action.Action{testutil.NewMockAction("lookup", "raw finding")})

	answer, err := r.Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, `{"action":"lookup"}`+"\nraw finding", answer)
}

func TestRuntime_MaxIterations(t *testing.T) {
	h := testutil.NewTestHarness(t)
	h.SetResponses(`{"action": "lookup"}`, `{"action": "lookup"}`, `{"action": "lookup"}`)
	r := newTestRuntime(t, h)
	r.SetActions([]action.Action{testutil.NewMockAction("lookup", "more")})
	r.SetMaxIterations(2)

	_, err := r.Run(context.Background(), "endless task")
	require.Error(t, err)
	assert.Equal(t, sherpaErrors.CodeMaxIterations, sherpaErrors.AsCode(err))
	assert.Equal(t, 2, h.Provider.CallCount())
}

func TestRuntime_MaxIterationsSynthesizes(t *testing.T) {
	h := testutil.NewTestHarness(t)
	h.SetResponses(`{"action": "lookup"}`, `{"action": "lookup"}`)
	r := newTestRuntime(t, h)
	synthesis := testutil.NewMockAction("synthesis", "best effort")
	r.SetActions([]action.Action{testutil.NewMockAction("lookup", "more"), synthesis})
	r.SetMaxIterations(2)

	answer, err := r.Run(context.Background(), "endless task")
	require.NoError(t, err)
	assert.Equal(t, "best effort", answer)
	assert.Equal(t, 1, synthesis.ExecutionCount())
}

func TestRuntime_ProviderError(t *testing.T) {
	h := testutil.NewTestHarness(t)
	h.Provider.ShouldFail = true
	r := newTestRuntime(t, h)

	_, err := r.Run(context.Background(), "task")
	require.Error(t, err)
	assert.Equal(t, sherpaErrors.CodeProviderError, sherpaErrors.AsCode(err))
}

func TestRuntime_ContextCanceled(t *testing.T) {
	h := testutil.NewTestHarness(t)
	r := newTestRuntime(t, h)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, "task")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, h.Provider.CallCount())
}

func TestRuntime_Feedback(t *testing.T) {
	h := testutil.NewTestHarness(t)
	h.SetResponses(`{"action": "finish", "answer": "short"}`)
	r := newTestRuntime(t, h)
	r.SetActions(nil)

	require.NoError(t, r.Feedback("keep it short"))

	_, err := r.Run(context.Background(), "describe Go")
	require.NoError(t, err)

	b := snapshot(t, r)
	assert.Equal(t, event.New(event.Feedback, "user", "keep it short"), b.Events()[0])
	assert.Len(t, b.GetByType(event.Feedback), 1)
	assert.Contains(t, h.Provider.Calls[0].Messages[0].Content, "keep it short")
	assert.Equal(t, 1, h.EventCount(event.Feedback))
}

func TestRuntime_ResumeKeepsMemoryAndActions(t *testing.T) {
	h := testutil.NewTestHarness(t)
	h.SetResponses(`{"action": "finish", "answer": "resumed"}`)
	r := newTestRuntime(t, h)
	lookup := testutil.NewMockAction("lookup", "")
	r.SetActions([]action.Action{lookup})

	saved := belief.New()
	task := event.New(event.Task, "user", "long task")
	saved.Update(task)
	saved.SetCurrentTask(task)
	saved.UpdateInternal(event.ActionOutput, "tester", "earlier finding")

	r.Restore(saved)

	answer, err := r.Run(context.Background(), "long task")
	require.NoError(t, err)
	assert.Equal(t, "resumed", answer)

	b := snapshot(t, r)
	assert.Len(t, b.GetByType(event.Task), 0)
	assert.Equal(t, task, b.Events()[0])
	assert.Len(t, b.Events(), 2, "the task is not recorded twice")
	assert.Contains(t, h.Provider.Calls[0].Messages[0].Content, "earlier finding")
	assert.Contains(t, h.Provider.Calls[0].System, `"name": "lookup"`)
	h.AssertNoEvent(event.Task)
}

func TestNewRuntimeWithProvider_Errors(t *testing.T) {
	h := testutil.NewTestHarness(t)

	cfg := testutil.TestConfig()
	cfg.Agent.Actions = []string{"planning", "levitate"}
	_, err := NewRuntimeWithProvider(cfg, h.Provider, h.Logger)
	assert.Equal(t, sherpaErrors.CodeActionNotFound, sherpaErrors.AsCode(err))

	cfg = testutil.TestConfig()
	cfg.Memory.TokenCounter = "syllables"
	_, err = NewRuntimeWithProvider(cfg, h.Provider, h.Logger)
	assert.Equal(t, sherpaErrors.CodeConfigInvalid, sherpaErrors.AsCode(err))
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(config.ProviderConfig{Name: "anthropic", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())

	p, err = NewProvider(config.ProviderConfig{Name: "openai", APIKey: "k", MaxRetries: 1})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = NewProvider(config.ProviderConfig{Name: "mock"})
	assert.Equal(t, sherpaErrors.CodeConfigInvalid, sherpaErrors.AsCode(err))
}
