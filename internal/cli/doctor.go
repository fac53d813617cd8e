package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mwinther/recollect/internal/api"
	"github.com/mwinther/recollect/internal/audit"
	"github.com/mwinther/recollect/internal/config"
	"github.com/mwinther/recollect/internal/store"
	"github.com/spf13/cobra"
)

var doctorSkipAPI bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, vault, and API reachability",
	RunE:  doctorAction,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorSkipAPI, "skip-api", false, "skip the live API check")
	rootCmd.AddCommand(doctorCmd)
}

func doctorAction(_ *cobra.Command, _ []string) error {
	ok := true

	// Config dir
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printCheck(false, "config directory %s (run 'recollect init')", configDir)
		ok = false
	} else {
		printCheck(true, "config directory %s", configDir)
	}

	// Config file
	cfg, err := config.Load(configDir)
	if err != nil {
		printCheck(false, "config.yaml: %v", err)
		ok = false
	} else {
		printCheck(true, "config.yaml (base URL %s)", cfg.API.BaseURL)
	}

	// API key
	if cfg != nil {
		if cfg.API.APIKey == "" {
			printCheck(false, "api key: environment variable %s is empty", cfg.API.APIKeyEnv)
			ok = false
		} else {
			printCheck(true, "api key from %s", cfg.API.APIKeyEnv)
		}
	}

	// Vault dir
	if cfg != nil {
		if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
			printCheck(false, "vault %s: %v", cfg.Vault.Path, err)
			ok = false
		} else {
			probe := filepath.Join(cfg.Vault.Path, ".recollect-probe")
			if err := os.WriteFile(probe, nil, 0o644); err != nil {
				printCheck(false, "vault %s is not writable: %v", cfg.Vault.Path, err)
				ok = false
			} else {
				_ = os.Remove(probe)
				printCheck(true, "vault %s", cfg.Vault.Path)
			}
		}
	}

	// Database
	if cfg != nil {
		db, err := store.Open(cfg.Storage.Path)
		if err != nil {
			printCheck(false, "database: %v", err)
			ok = false
		} else {
			_ = db.Close()
			printCheck(true, "database %s", cfg.Storage.Path)
		}
	}

	// API reachability
	if cfg != nil && cfg.API.APIKey != "" && !doctorSkipAPI {
		client, err := api.New(cfg.API.BaseURL, cfg.API.APIKey, 1, audit.NopSink{})
		if err != nil {
			printCheck(false, "api client: %v", err)
			ok = false
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := client.Ping(ctx); err != nil {
				printCheck(false, "api: %v", err)
				ok = false
			} else {
				printCheck(true, "api reachable")
			}
			cancel()
		}
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

func printCheck(pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Printf("[%s] %s\n", mark, fmt.Sprintf(format, args...))
}
