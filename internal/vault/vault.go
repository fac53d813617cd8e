// Package vault writes date-partitioned markdown files into the target folder.
package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mwinther/recollect/internal/api"
	"github.com/mwinther/recollect/internal/notify"
)

// DayFormat is the calendar-date key used for grouping and file names.
const DayFormat = "2006-01-02"

// File is one planned output file: rendered content for a single date group.
type File struct {
	Path    string
	Content []byte
	Records int
}

// Writer renders date groups to markdown and commits them to the vault
// directory, overwriting existing files of the same name.
type Writer struct {
	dir      string
	notifier notify.Notifier
}

func NewWriter(dir string, notifier notify.Notifier) (*Writer, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("vault: directory is required")
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Writer{dir: dir, notifier: notifier}, nil
}

// Dir returns the vault directory.
func (w *Writer) Dir() string { return w.dir }

// EnsureDir creates the vault directory if absent.
func (w *Writer) EnsureDir() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}
	return nil
}

// dayKey truncates a timestamp to its UTC calendar day. Grouping always uses
// the UTC day, never the local one.
func dayKey(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// groupByDay partitions items into date groups keyed by the UTC day of their
// timestamp. Order within a group is input order; days are returned sorted.
func groupByDay[T any](items []T, at func(T) time.Time) ([]string, map[string][]T) {
	groups := make(map[string][]T)
	var days []string
	for _, item := range items {
		day := dayKey(at(item))
		if _, ok := groups[day]; !ok {
			days = append(days, day)
		}
		groups[day] = append(groups[day], item)
	}
	sort.Strings(days)
	return days, groups
}

// PlanDailyLogs renders one file per date group of logs, named <date>.md.
func (w *Writer) PlanDailyLogs(logs []api.Lifelog) []File {
	days, groups := groupByDay(logs, func(l api.Lifelog) time.Time { return l.StartTime })

	files := make([]File, 0, len(days))
	for _, day := range days {
		files = append(files, File{
			Path:    filepath.Join(w.dir, day+".md"),
			Content: []byte(renderDailyLog(day, groups[day])),
			Records: len(groups[day]),
		})
	}
	return files
}

// PlanConversations renders one file per date group of conversations, named
// <date>-conversations.md.
func (w *Writer) PlanConversations(convs []api.Conversation) []File {
	days, groups := groupByDay(convs, func(c api.Conversation) time.Time { return c.StartTime })

	files := make([]File, 0, len(days))
	for _, day := range days {
		files = append(files, File{
			Path:    filepath.Join(w.dir, day+"-conversations.md"),
			Content: []byte(renderConversations(day, groups[day])),
			Records: len(groups[day]),
		})
	}
	return files
}

// Commit writes every planned file, creating the vault directory first and
// unconditionally overwriting existing files. Returns the number written.
func (w *Writer) Commit(files []File) (int, error) {
	if err := w.EnsureDir(); err != nil {
		return 0, err
	}

	written := 0
	for _, f := range files {
		if err := os.WriteFile(f.Path, f.Content, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", f.Path, err)
		}
		written++
		w.notifier.Synced(f.Path, f.Records)
	}
	return written, nil
}
