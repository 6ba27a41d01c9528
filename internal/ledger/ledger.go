// Package ledger records how long each pipeline step took. It is
// diagnostic only; nothing reads it back to decide what to run.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/news-digest/internal/logging"
)

// Step statuses
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Entry is one timed step.
type Entry struct {
	RunID      uuid.UUID `json:"run_id"`
	Label      string    `json:"label"`
	Day        string    `json:"day,omitempty"`
	Lang       string    `json:"lang,omitempty"`
	StartedAt  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	Tokens     int       `json:"tokens,omitempty"`
}

// Recorder persists entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Close() error
}

// StepInfo identifies a step.
type StepInfo struct {
	Label string
	Day   string
	Lang  string
}

// Ledger fans entries out to its recorders under one run ID.
type Ledger struct {
	RunID     uuid.UUID
	recorders []Recorder
	logger    *slog.Logger
	now       func() time.Time
	mu        sync.Mutex
	entries   []Entry
}

// New creates a Ledger with a fresh run ID.
func New(logger *slog.Logger, recorders ...Recorder) *Ledger {
	return &Ledger{
		RunID:     uuid.New(),
		recorders: recorders,
		logger:    logging.OrDiscard(logger),
		now:       time.Now,
	}
}

// Step runs fn, times it and records the outcome. fn's error is returned
// unchanged; recorder failures are only logged.
func (l *Ledger) Step(ctx context.Context, info StepInfo, fn func(ctx context.Context) (int, error)) error {
	start := l.now()
	tokens, err := fn(ctx)

	e := Entry{
		RunID:      l.RunID,
		Label:      info.Label,
		Day:        info.Day,
		Lang:       info.Lang,
		StartedAt:  start.UTC(),
		DurationMs: l.now().Sub(start).Milliseconds(),
		Status:     StatusCompleted,
		Tokens:     tokens,
	}
	if err != nil {
		e.Status = StatusFailed
		e.Error = err.Error()
	}
	l.record(ctx, e)
	return err
}

// Skip records a step that had nothing to do.
func (l *Ledger) Skip(ctx context.Context, info StepInfo) {
	l.record(ctx, Entry{
		RunID:     l.RunID,
		Label:     info.Label,
		Day:       info.Day,
		Lang:      info.Lang,
		StartedAt: l.now().UTC(),
		Status:    StatusSkipped,
	})
}

func (l *Ledger) record(ctx context.Context, e Entry) {
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()

	for _, r := range l.recorders {
		if err := r.Record(ctx, e); err != nil {
			l.logger.Warn("failed to record step timing", "label", e.Label, "error", err)
		}
	}
}

// Entries returns everything recorded in this run.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Close closes all recorders.
func (l *Ledger) Close() error {
	var errs []error
	for _, r := range l.recorders {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
