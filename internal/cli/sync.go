package cli

import (
	"fmt"
	"path/filepath"

	"github.com/mwinther/recollect/internal/api"
	"github.com/mwinther/recollect/internal/audit"
	"github.com/mwinther/recollect/internal/config"
	"github.com/mwinther/recollect/internal/notify"
	"github.com/mwinther/recollect/internal/store"
	"github.com/mwinther/recollect/internal/syncer"
	"github.com/mwinther/recollect/internal/vault"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync daily logs, then conversations",
	RunE:  syncAction,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func syncAction(cmd *cobra.Command, args []string) error {
	if err := logsAction(cmd, args); err != nil {
		return err
	}
	return conversationsAction(cmd, args)
}

// buildSyncer assembles the full pipeline from the config directory. The
// returned cleanup closes the state store.
func buildSyncer() (*syncer.Syncer, func(), error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	cleanup := func() { _ = db.Close() }

	sink := audit.NewFileSink(filepath.Join(cfg.Vault.Path, audit.DefaultLogFile))

	client, err := api.New(cfg.API.BaseURL, cfg.API.APIKey, cfg.API.PageLimit, sink)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create api client: %w", err)
	}

	notifier := notify.Console{}

	writer, err := vault.NewWriter(cfg.Vault.Path, notifier)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create vault writer: %w", err)
	}

	s, err := syncer.New(cfg, client, writer, db, notifier, sink)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return s, cleanup, nil
}
