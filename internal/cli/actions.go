package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cadre-oss/sherpa/internal/action"
	"github.com/cadre-oss/sherpa/internal/belief"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the actions the agent can choose from",
	Long:  `Print the configured actions exactly as they are described to the model.`,
	RunE:  runActions,
}

func runActions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	actions, err := action.Build(cfg.Agent.Actions, action.Deps{
		SearchResults:   cfg.Search.MaxResults,
		SearchUserAgent: cfg.Search.UserAgent,
	})
	if err != nil {
		return err
	}

	b := belief.New()
	b.SetActions(actions)
	fmt.Fprintln(cmd.OutOrStdout(), b.ActionDescription())
	return nil
}
