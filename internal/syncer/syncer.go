// Package syncer drives a full sync: fetch everything, group by date, write
// the vault. One sync runs at a time; there is no resumption of partial work.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mwinther/recollect/internal/api"
	"github.com/mwinther/recollect/internal/audit"
	"github.com/mwinther/recollect/internal/config"
	"github.com/mwinther/recollect/internal/notify"
	"github.com/mwinther/recollect/internal/redact"
	"github.com/mwinther/recollect/internal/store"
	"github.com/mwinther/recollect/internal/vault"
)

// ErrMissingAPIKey aborts a sync before any network call or file write.
var ErrMissingAPIKey = errors.New("api key is required: set it in the environment named by api.api_key_env")

// state tracks where a sync currently is. Any error returns the syncer to
// stateIdle after the failure is reported.
type state int

const (
	stateIdle state = iota
	stateFetching
	stateGrouping
	stateWriting
)

// Syncer wires the fetcher, writer, state store, and notification surface
// behind the two sync operations.
type Syncer struct {
	cfg      *config.Config
	client   *api.Client
	writer   *vault.Writer
	store    *store.Store
	notifier notify.Notifier
	sink     audit.Sink
	patterns []*regexp.Regexp
	state    state
}

// New creates a Syncer. The state store may be nil, in which case run
// history and the derived start date are skipped.
func New(cfg *config.Config, client *api.Client, writer *vault.Writer, st *store.Store, notifier notify.Notifier, sink audit.Sink) (*Syncer, error) {
	if cfg == nil {
		return nil, errors.New("syncer: config is required")
	}
	if client == nil {
		return nil, errors.New("syncer: api client is required")
	}
	if writer == nil {
		return nil, errors.New("syncer: vault writer is required")
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if sink == nil {
		sink = audit.NopSink{}
	}

	patterns, err := redact.Compile(cfg.Sync.Redact)
	if err != nil {
		return nil, fmt.Errorf("syncer: %w", err)
	}

	return &Syncer{
		cfg:      cfg,
		client:   client,
		writer:   writer,
		store:    st,
		notifier: notifier,
		sink:     sink,
		patterns: patterns,
	}, nil
}

// SyncLogs fetches all lifelogs and writes one <date>.md file per UTC day.
func (s *Syncer) SyncLogs(ctx context.Context) error {
	return s.run(ctx, store.KindLogs, s.syncLogs)
}

// SyncConversations fetches all conversations and writes one
// <date>-conversations.md file per UTC day.
func (s *Syncer) SyncConversations(ctx context.Context) error {
	return s.run(ctx, store.KindConversations, s.syncConversations)
}

// run is the shared top level of both operations: the up-front key guard,
// run-history accounting, and single-point failure reporting.
func (s *Syncer) run(ctx context.Context, kind string, fn func(context.Context) (int, int, error)) error {
	op := "sync " + kind

	if strings.TrimSpace(s.cfg.API.APIKey) == "" {
		s.notifier.Failure(op, ErrMissingAPIKey)
		return ErrMissingAPIKey
	}

	var runID string
	if s.store != nil {
		run, err := s.store.BeginRun(ctx, kind)
		if err != nil {
			s.notifier.Failure(op, err)
			return err
		}
		runID = run.ID
	}

	records, files, err := fn(ctx)
	s.state = stateIdle

	if s.store != nil {
		if ferr := s.store.FinishRun(ctx, runID, records, files, err); ferr != nil {
			fmt.Fprintf(os.Stderr, "record run: %v\n", ferr)
		}
	}

	if err != nil {
		s.recordFailure(op, err)
		s.notifier.Failure(op, err)
		return err
	}
	return nil
}

func (s *Syncer) syncLogs(ctx context.Context) (records, files int, err error) {
	s.state = stateFetching
	logs, err := s.client.FetchLifelogs(ctx, s.startDate(ctx))
	if err != nil {
		return 0, 0, err
	}
	redact.Lifelogs(logs, s.patterns)

	s.state = stateGrouping
	planned := s.writer.PlanDailyLogs(logs)

	s.state = stateWriting
	written, err := s.writer.Commit(planned)
	if err != nil {
		return len(logs), written, err
	}
	return len(logs), written, nil
}

func (s *Syncer) syncConversations(ctx context.Context) (records, files int, err error) {
	s.state = stateFetching
	convs, err := s.client.FetchConversations(ctx)
	if err != nil {
		return 0, 0, err
	}
	redact.Conversations(convs, s.patterns)

	s.state = stateGrouping
	planned := s.writer.PlanConversations(convs)

	s.state = stateWriting
	written, err := s.writer.Commit(planned)
	if err != nil {
		return len(convs), written, err
	}
	return len(convs), written, nil
}

// startDate resolves the lifelog lower bound: the configured start date, or
// the day of the last successful logs run, or nothing.
func (s *Syncer) startDate(ctx context.Context) string {
	if s.cfg.Sync.StartDate != "" {
		return s.cfg.Sync.StartDate
	}
	if s.store == nil {
		return ""
	}
	last, ok, err := s.store.LastSuccessful(ctx, store.KindLogs)
	if err != nil || !ok {
		return ""
	}
	return last.UTC().Format(config.StartDateFormat)
}

// recordFailure appends the operation's failure to the audit trail. The
// fetcher already records network and format errors per request; this covers
// everything else, and sink failures stay non-fatal.
func (s *Syncer) recordFailure(op string, err error) {
	rerr := s.sink.Record(audit.Entry{
		At:      time.Now(),
		Kind:    audit.KindError,
		Summary: op + " failed",
		Detail:  err.Error(),
	})
	if rerr != nil {
		fmt.Fprintf(os.Stderr, "audit: %v\n", rerr)
	}
}
