package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cadre-oss/sherpa/internal/agent"
	"github.com/cadre-oss/sherpa/internal/belief"
	"github.com/cadre-oss/sherpa/internal/checkpoint"
	"github.com/cadre-oss/sherpa/internal/config"
	"github.com/cadre-oss/sherpa/internal/event"
	"github.com/cadre-oss/sherpa/internal/telemetry"
)

var (
	runResume      string
	runMetrics     bool
	runMetricsOut  string
	runInteractive bool
)

var runCmd = &cobra.Command{
	Use:   "run <task>",
	Short: "Run the agent on a task",
	Long: `Run the agent on a task and print the final answer.

The agent's memory is checkpointed when the run ends, whether it succeeded,
failed or was interrupted, so it can be resumed later.

Examples:
  sherpa run "What is the population of Lyon times 3?"
  sherpa run "Compare Go and Rust error handling" --provider anthropic
  sherpa run "Summarize the latest Go release" --resume 6f1c...   # continue a checkpoint
  sherpa run "Plan a product launch" --interactive               # type feedback while it works`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runResume, "resume", "r", "", "resume from checkpoint ID")
	runCmd.Flags().BoolVar(&runMetrics, "metrics", false, "print run metrics when done")
	runCmd.Flags().StringVar(&runMetricsOut, "metrics-out", "", "append a JSON metrics snapshot to this file")
	runCmd.Flags().BoolVarP(&runInteractive, "interactive", "i", false, "read feedback lines from stdin while running")

	runCmd.Flags().String("provider", "", "provider override (anthropic, openai)")
	runCmd.Flags().String("model", "", "model override")
	runCmd.Flags().Int("max-iterations", 0, "maximum decisions before answering")
	runCmd.Flags().Int("max-tokens", 0, "memory token budget per prompt section")
	runCmd.Flags().String("token-counter", "", "token counter override (estimate, words, tiktoken)")

	_ = viper.BindPFlag("provider.name", runCmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("provider.model", runCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("agent.max_iterations", runCmd.Flags().Lookup("max-iterations"))
	_ = viper.BindPFlag("memory.max_tokens", runCmd.Flags().Lookup("max-tokens"))
	_ = viper.BindPFlag("memory.token_counter", runCmd.Flags().Lookup("token-counter"))
}

func runRun(cmd *cobra.Command, args []string) error {
	task := strings.TrimSpace(args[0])
	if task == "" {
		return fmt.Errorf("task must not be empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := telemetry.NewLoggerFromConfig(cfg.Logging, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()
	logger = logger.WithFields(map[string]interface{}{"agent": cfg.Agent.Name})

	timeout, err := cfg.Agent.ParsedTimeout()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nReceived interrupt, saving checkpoint...")
			cancel()
		case <-ctx.Done():
		}
	}()

	checkpoints, err := checkpoint.NewManager(cfg.Checkpoint.Driver, cfg.Checkpoint.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize checkpoints: %w", err)
	}
	defer checkpoints.Close()

	runtime, err := agent.NewRuntime(cfg, logger)
	if err != nil {
		return err
	}

	if runMetricsOut != "" {
		exporter, err := telemetry.NewJSONLExporter(runMetricsOut)
		if err != nil {
			return fmt.Errorf("failed to open metrics file: %w", err)
		}
		defer exporter.Close()
		runtime.GetMetrics().SetExporter(exporter)
	}

	bus, err := newEventBus(cfg, logger)
	if err != nil {
		return err
	}
	runtime.SetEventBus(bus)
	defer bus.Wait()

	if runResume != "" {
		restored, err := checkpoints.Restore(runResume)
		if err != nil {
			return fmt.Errorf("failed to restore checkpoint %s: %w", runResume, err)
		}
		runtime.Restore(restored)
		logger.Info("Resumed from checkpoint", "id", runResume)
	}

	if runInteractive {
		go readFeedback(ctx, cmd.InOrStdin(), runtime, logger)
	}

	answer, runErr := runtime.Run(ctx, task)

	cp, err := saveCheckpoint(checkpoints, cfg.Agent.Name, runtime)
	if err != nil {
		logger.Error("Failed to save checkpoint", "error", err)
	} else {
		logger.Info("Checkpoint saved", "id", cp.ID)
	}

	if runMetrics {
		printMetrics(cmd.ErrOrStderr(), runtime.GetMetrics())
	}
	if err := runtime.GetMetrics().Flush("run", map[string]string{"agent": cfg.Agent.Name}); err != nil {
		logger.Warn("Failed to export metrics", "error", err)
	}

	if runErr != nil {
		if cp != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Resume with: sherpa run %q --resume %s\n", task, cp.ID)
		}
		return fmt.Errorf("run failed: %w", runErr)
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}

func newEventBus(cfg *config.Config, logger *telemetry.Logger) (*event.Bus, error) {
	hooks, err := event.HooksFromConfig(cfg.Hooks, logger)
	if err != nil {
		return nil, err
	}
	bus := event.NewBus(logger)
	for _, h := range hooks {
		bus.Register(h)
	}
	return bus, nil
}

func saveCheckpoint(m *checkpoint.Manager, agentName string, runtime *agent.Runtime) (*checkpoint.Checkpoint, error) {
	var cp *checkpoint.Checkpoint
	err := runtime.GetAgent().Memory().View(func(b *belief.Belief) error {
		var err error
		cp, err = m.Save(agentName, b)
		return err
	})
	return cp, err
}

// readFeedback forwards each non-empty line of r to the running agent.
func readFeedback(ctx context.Context, r io.Reader, runtime *agent.Runtime, logger *telemetry.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := runtime.Feedback(line); err != nil {
			logger.Warn("Feedback hook failed", "error", err)
		}
	}
}

func printMetrics(w io.Writer, m *telemetry.Metrics) {
	summary := m.GetSummary()
	fmt.Fprintln(w, "\nMetrics:")
	for _, key := range []string{
		"decisions", "action_calls", "action_failures", "api_requests",
		"context_builds", "avg_action_latency_ms", "avg_api_latency_ms",
	} {
		if v, ok := summary[key]; ok {
			fmt.Fprintf(w, "  %-22s %v\n", key, v)
		}
	}
}
