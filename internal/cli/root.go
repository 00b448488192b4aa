package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cadre-oss/sherpa/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sherpa",
	Short: "Task-solving agent with token-budgeted memory",
	Long: `sherpa - an agent that works a task one action at a time.

Each run records what the agent observes and reasons into its memory,
rebuilds a token-budgeted prompt from that memory before every decision,
and checkpoints the memory so an interrupted run can be resumed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sherpa.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkpointCmd)
	rootCmd.AddCommand(actionsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	// sherpa.yaml itself is read by the config package. Viper layers the bound
	// flags and SHERPA_* variables on top: SHERPA_PROVIDER_MODEL sets
	// provider.model, and so on.
	viper.SetEnvPrefix("sherpa")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", configPath())
	}
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.FileName
}

// loadConfig reads sherpa.yaml, applies flag and environment overrides, and
// validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(configPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if viper.IsSet("agent.max_iterations") {
		cfg.Agent.MaxIterations = viper.GetInt("agent.max_iterations")
	}
	if viper.IsSet("memory.max_tokens") {
		cfg.Memory.MaxTokens = viper.GetInt("memory.max_tokens")
	}
	if viper.IsSet("memory.token_counter") {
		cfg.Memory.TokenCounter = viper.GetString("memory.token_counter")
	}
	if name := viper.GetString("provider.name"); viper.IsSet("provider.name") && name != cfg.Provider.Name {
		// Model and key defaults belong to the provider they were filled for.
		cfg.Provider.Name = name
		cfg.Provider.Model = ""
		cfg.Provider.APIKey = ""
	}
	if viper.IsSet("provider.model") {
		cfg.Provider.Model = viper.GetString("provider.model")
	}
	if viper.IsSet("logging.level") {
		cfg.Logging.Level = viper.GetString("logging.level")
	}

	config.ApplyDefaults(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
