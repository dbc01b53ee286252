// Package audit records one entry per engine run.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/ShayCichocki/codi/internal/logging"
)

// Record is the audit entry written for every engine run.
type Record struct {
	ExecutionID string    `json:"execution_id"`
	Goal        string    `json:"goal"`
	Steps       []string  `json:"steps"`
	Warnings    []string  `json:"warnings"`
	Errors      []string  `json:"errors"`
	Timestamp   time.Time `json:"timestamp"`
}

// Sink receives audit records. Implementations must not block for long and
// must not panic; callers still recover if they do.
type Sink interface {
	Record(rec Record)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Record)

// Record implements Sink.
func (f SinkFunc) Record(rec Record) { f(rec) }

// Discard drops every record.
var Discard Sink = SinkFunc(func(Record) {})

// LogSink writes records to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink writing to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logging.OrNop(logger).With("component", "audit")}
}

// Record implements Sink.
func (s *LogSink) Record(rec Record) {
	level := slog.LevelInfo
	if len(rec.Errors) > 0 {
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, "engine run",
		"execution_id", rec.ExecutionID,
		"goal", rec.Goal,
		"steps", len(rec.Steps),
		"warnings", rec.Warnings,
		"errors", rec.Errors,
	)
}

// Store persists audit records.
type Store interface {
	SaveAuditRecord(ctx context.Context, rec Record) error
}

// StoreSink writes records to a Store. Write failures are logged, never
// returned.
type StoreSink struct {
	store  Store
	logger *slog.Logger
}

// NewStoreSink returns a sink persisting to store.
func NewStoreSink(store Store, logger *slog.Logger) *StoreSink {
	return &StoreSink{store: store, logger: logging.OrNop(logger).With("component", "audit")}
}

// Record implements Sink.
func (s *StoreSink) Record(rec Record) {
	if err := s.store.SaveAuditRecord(context.Background(), rec); err != nil {
		s.logger.Error("persist audit record", "execution_id", rec.ExecutionID, "error", err)
	}
}

// Multi fans a record out to several sinks. A panicking sink does not stop
// the others.
type Multi []Sink

// Record implements Sink.
func (m Multi) Record(rec Record) {
	for _, s := range m {
		Safe(s, rec)
	}
}

// Safe delivers rec to s, swallowing any panic. It reports whether delivery
// completed.
func Safe(s Sink, rec Record) (ok bool) {
	if s == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	s.Record(rec)
	return true
}
