package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cadre-oss/sherpa/internal/config"
)

var initProvider string

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a starter sherpa.yaml",
	Long: `Write a starter sherpa.yaml and .gitignore into dir (default: the current directory).

Available providers:
  openai    - OpenAI chat completions (OPENAI_API_KEY)
  anthropic - Anthropic Messages API (ANTHROPIC_API_KEY)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initProvider, "provider", "p", "openai", "provider to configure (openai, anthropic)")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(filepath.Join(dir, ".sherpa"), 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	content, err := starterConfig(initProvider)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := createGitignore(dir); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Initialized sherpa project in %s\n", dir)
	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintf(w, "  1. Export your API key (%s)\n", apiKeyEnv(initProvider))
	fmt.Fprintln(w, "  2. Adjust actions and memory budget in sherpa.yaml")
	fmt.Fprintln(w, `  3. Run 'sherpa run "<task>"'`)
	return nil
}

func starterConfig(provider string) ([]byte, error) {
	if provider != "openai" && provider != "anthropic" {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	content := fmt.Sprintf(`# sherpa.yaml - Project configuration
name: my-project
version: "1.0"

agent:
  name: sherpa
  description: An assistant that completes tasks by choosing among the available actions.
  max_iterations: 5
  timeout: 10m
  actions: [planning, search, arithmetic, synthesis]

# Token budget for each rebuilt prompt section
memory:
  max_tokens: 4000
  token_counter: estimate  # estimate | words | tiktoken

provider:
  name: %s
  # api_key: ${%s}
  max_retries: 3
  max_tokens: 1024

search:
  max_results: 5

logging:
  level: info
  format: text  # text | json

checkpoint:
  driver: sqlite
  path: .sherpa/checkpoints.db
`, provider, apiKeyEnv(provider))

	// Fail here rather than on the first run if the template drifts from the schema.
	if _, err := config.Parse([]byte(content)); err != nil {
		return nil, err
	}
	return []byte(content), nil
}

func apiKeyEnv(provider string) string {
	if provider == "anthropic" {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

func createGitignore(dir string) error {
	content := `# sherpa
.sherpa/

# Secrets
*.env
.env.*
`
	return os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0644)
}
