package cli

import (
	"github.com/spf13/cobra"
)

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "Sync conversation transcripts into the vault",
	RunE:  conversationsAction,
}

func init() {
	rootCmd.AddCommand(conversationsCmd)
}

func conversationsAction(cmd *cobra.Command, _ []string) error {
	s, cleanup, err := buildSyncer()
	if err != nil {
		return err
	}
	defer cleanup()

	return s.SyncConversations(cmd.Context())
}
