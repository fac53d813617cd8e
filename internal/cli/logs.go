package cli

import (
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Sync daily logs into the vault",
	RunE:  logsAction,
}

func init() {
	rootCmd.AddCommand(logsCmd)
}

func logsAction(cmd *cobra.Command, _ []string) error {
	s, cleanup, err := buildSyncer()
	if err != nil {
		return err
	}
	defer cleanup()

	return s.SyncLogs(cmd.Context())
}
