// Package audit records every outbound request, inbound response, and error
// of a sync as an append-only markdown trail.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultLogFile is the audit trail's file name inside the vault.
const DefaultLogFile = "api-logs.md"

// Kind classifies an audit entry.
type Kind string

const (
	KindRequest  Kind = "request"
	KindResponse Kind = "response"
	KindError    Kind = "error"
)

// Entry is one timestamped event in the audit trail.
type Entry struct {
	At      time.Time
	Kind    Kind
	Summary string
	Detail  string
}

// Sink receives audit entries. Implementations must be safe to call even
// when recording fails upstream; callers treat Record errors as non-fatal.
type Sink interface {
	Record(e Entry) error
}

// NopSink discards every entry.
type NopSink struct{}

func (NopSink) Record(Entry) error { return nil }

// FileSink appends entries to a markdown file, one heading per entry.
type FileSink struct {
	path string
}

// NewFileSink creates a sink appending to path. The file and its parent
// directory are created on first write.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Record(e Entry) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s %s\n\n", at.UTC().Format(time.RFC3339), e.Kind)
	fmt.Fprintf(&b, "%s\n", e.Summary)
	if strings.TrimSpace(e.Detail) != "" {
		fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(e.Detail))
	}
	b.WriteString("\n")

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create audit dir: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}
