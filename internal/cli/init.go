package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/akarpov/wordgrab/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config directory with an example config",
	RunE:  initAction,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func initAction(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	configPath := filepath.Join(configDir, config.DefaultConfigFile)
	wrote, err := writeIfNotExists(configPath, []byte(exampleConfig))
	if err != nil {
		return err
	}
	if !wrote {
		fmt.Printf("Config directory %s already initialized.\n", configDir)
		return nil
	}

	fmt.Printf("Initialized %s.\n", configDir)
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
// Returns true if the file was created.
func writeIfNotExists(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("  exists: %s\n", path)
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("  created: %s\n", path)
	return true, nil
}

const exampleConfig = `# wordgrab configuration.
# A platform is enabled by listing it here; keys ending in _env are
# resolved from the environment (or a .env file) at load time.
platforms:
  reddit:
    user_agent: "wordgrab/1.0"
  twitter:
    bearer_token_env: TWITTER_BEARER_TOKEN
  hn: {}
  rss: {}

# Platforms to skip even though credentials are present.
# exclude:
#   - rss

fetch:
  max_items: 200
  timeout: 2m

storage:
  path: .wordgrab/wordgrab.db
`
