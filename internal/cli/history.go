package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mwinther/recollect/internal/config"
	"github.com/mwinther/recollect/internal/store"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync runs",
	RunE:  historyAction,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to show")
	historyCmd.Flags().StringVar(&historyFormat, "format", "terminal", "output format: terminal, json")
	rootCmd.AddCommand(historyCmd)
}

func historyAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	runs, err := db.RecentRuns(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("recent runs: %w", err)
	}

	switch historyFormat {
	case "json":
		return printHistoryJSON(os.Stdout, runs)
	case "terminal", "":
		printHistory(os.Stdout, runs)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want terminal or json)", historyFormat)
	}
}

type jsonRun struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
	Records    int    `json:"records"`
	Files      int    `json:"files"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

func printHistoryJSON(w io.Writer, runs []store.Run) error {
	out := make([]jsonRun, 0, len(runs))
	for _, r := range runs {
		jr := jsonRun{
			ID:        r.ID,
			Kind:      r.Kind,
			StartedAt: r.StartedAt.UTC().Format(time.RFC3339),
			Records:   r.Records,
			Files:     r.Files,
			Status:    r.Status,
			Error:     r.Error,
		}
		if !r.FinishedAt.IsZero() {
			jr.FinishedAt = r.FinishedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printHistory(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No sync runs yet. Run 'recollect sync' first.")
		return
	}

	for _, r := range runs {
		when := humanize.Time(r.StartedAt)
		switch r.Status {
		case store.StatusOK:
			fmt.Fprintf(w, "  %-14s %-22s %4d records, %3d files\n", r.Kind, when, r.Records, r.Files)
		case store.StatusError:
			fmt.Fprintf(w, "  %-14s %-22s FAILED: %s\n", r.Kind, when, r.Error)
		default:
			fmt.Fprintf(w, "  %-14s %-22s %s\n", r.Kind, when, r.Status)
		}
	}
}
