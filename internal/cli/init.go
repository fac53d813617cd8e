package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mwinther/recollect/internal/config"
	"github.com/spf13/cobra"
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

	if wrote {
		fmt.Printf("Initialized %s.\n", configDir)
	} else {
		fmt.Printf("Config directory %s already initialized.\n", configDir)
	}
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

const exampleConfig = `# recollect configuration

api:
  base_url: https://api.recorder.example
  # The API key is read from this environment variable, never from this file.
  api_key_env: RECOLLECT_API_KEY
  page_limit: 10

vault:
  path: vault

storage:
  path: .recollect/recollect.db

sync:
  # ISO date lower bound for lifelog fetches. Leave empty to resume from the
  # last successful sync.
  start_date: ""
  # Regex patterns scrubbed from records before writing.
  redact: []
  # - '\b\d{3}[- ]?\d{3}[- ]?\d{4}\b'
`
