package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cadre-oss/sherpa/internal/belief"
	"github.com/cadre-oss/sherpa/internal/checkpoint"
	"github.com/cadre-oss/sherpa/internal/config"
	"github.com/cadre-oss/sherpa/internal/event"
	"github.com/cadre-oss/sherpa/internal/token"
)

var (
	checkpointAgent string
	checkpointLimit int
	checkpointYAML  bool
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect saved agent memory",
	Long:  `Commands for listing, inspecting and deleting memory checkpoints.`,
}

var checkpointListCmd = &cobra.Command{
	Use:   "list",
	Short: "List checkpoints, newest first",
	RunE:  runCheckpointList,
}

var checkpointShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a checkpoint's memory",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckpointShow,
}

var checkpointContextCmd = &cobra.Command{
	Use:   "context <id>",
	Short: "Print the prompt context rebuilt from a checkpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckpointContext,
}

var checkpointDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a checkpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckpointDelete,
}

func init() {
	checkpointListCmd.Flags().StringVarP(&checkpointAgent, "agent", "a", "", "only this agent's checkpoints")
	checkpointListCmd.Flags().IntVarP(&checkpointLimit, "limit", "n", 20, "maximum checkpoints to list (0 for all)")
	checkpointShowCmd.Flags().BoolVar(&checkpointYAML, "yaml", false, "print as YAML instead of JSON")

	checkpointCmd.AddCommand(checkpointListCmd)
	checkpointCmd.AddCommand(checkpointShowCmd)
	checkpointCmd.AddCommand(checkpointContextCmd)
	checkpointCmd.AddCommand(checkpointDeleteCmd)
}

func openCheckpoints() (*checkpoint.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openCheckpointsWith(cfg)
}

func openCheckpointsWith(cfg *config.Config) (*checkpoint.Manager, error) {
	m, err := checkpoint.NewManager(cfg.Checkpoint.Driver, cfg.Checkpoint.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoints: %w", err)
	}
	return m, nil
}

func runCheckpointList(cmd *cobra.Command, args []string) error {
	m, err := openCheckpoints()
	if err != nil {
		return err
	}
	defer m.Close()

	cps, err := m.List(checkpointAgent, checkpointLimit)
	if err != nil {
		return err
	}
	if len(cps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No checkpoints found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAGENT\tCREATED\tTASK")
	for _, cp := range cps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cp.ID, cp.Agent, cp.CreatedAt.Local().Format("2006-01-02 15:04:05"), truncate(cp.Task, 60))
	}
	return w.Flush()
}

func runCheckpointShow(cmd *cobra.Command, args []string) error {
	m, err := openCheckpoints()
	if err != nil {
		return err
	}
	defer m.Close()

	cp, err := m.Get(args[0])
	if err != nil {
		return err
	}
	// Decoding first rejects corrupt checkpoints before anything is printed.
	if _, err := checkpoint.Decode(cp); err != nil {
		return err
	}

	var out []byte
	if checkpointYAML {
		out, err = yaml.Marshal(cp)
	} else {
		out, err = json.MarshalIndent(cp, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runCheckpointContext(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	counter, err := token.FromConfig(cfg.Memory)
	if err != nil {
		return err
	}

	m, err := openCheckpointsWith(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	b, err := m.Restore(args[0])
	if err != nil {
		return err
	}

	budget := belief.WithMaxTokens(cfg.Memory.MaxTokens)
	out := cmd.OutOrStdout()

	taskContext, err := b.GetContext(counter, budget)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "== Context ==")
	fmt.Fprint(out, taskContext)
	fmt.Fprintln(out, "\n== Internal history ==")
	fmt.Fprintln(out, b.GetInternalHistory(counter, budget))
	fmt.Fprintln(out, "\n== Findings (task events excluded) ==")
	fmt.Fprintln(out, b.GetHistoriesExcludingTypes(counter, []event.Kind{event.Task}, budget))
	return nil
}

func runCheckpointDelete(cmd *cobra.Command, args []string) error {
	m, err := openCheckpoints()
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Delete(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted checkpoint %s\n", args[0])
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
