package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/ShayCichocki/codi/internal/audit"
	"github.com/ShayCichocki/codi/internal/logging"
)

// Audited wraps an engine so that every run produces exactly one audit
// record, whether the inner engine succeeds, fails or panics.
type Audited struct {
	inner  Engine
	sink   audit.Sink
	now    func() time.Time
	logger *slog.Logger
}

// NewAudited wraps inner. A nil sink discards records.
func NewAudited(inner Engine, sink audit.Sink, logger *slog.Logger) *Audited {
	if sink == nil {
		sink = audit.Discard
	}
	return &Audited{
		inner:  inner,
		sink:   sink,
		now:    time.Now,
		logger: logging.OrNop(logger).With("component", "audit"),
	}
}

// Run executes the inner engine and records the outcome. Inner errors and
// panics become a zero-step result carrying the message as its only error.
func (a *Audited) Run(ctx context.Context, executionID, goal string, input map[string]any) Result {
	res := a.runInner(ctx, goal, input)

	rec := audit.Record{
		ExecutionID: executionID,
		Goal:        goal,
		Steps:       slices.Clone(res.Steps),
		Warnings:    slices.Clone(res.Warnings),
		Errors:      slices.Clone(res.Errors),
		Timestamp:   a.now(),
	}
	if !audit.Safe(a.sink, rec) {
		a.logger.Error("audit sink failed", "execution_id", executionID)
	}
	return res
}

func (a *Audited) runInner(ctx context.Context, goal string, input map[string]any) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("engine panicked", "panic", r)
			res = failedResult(fmt.Sprintf("engine panic: %v", r))
		}
	}()

	if a.inner == nil {
		return failedResult("no engine configured")
	}
	out, err := a.inner.Run(ctx, goal, input)
	if err != nil {
		return failedResult(err.Error())
	}
	if out.Steps == nil {
		out.Steps = []string{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	if out.Errors == nil {
		out.Errors = []string{}
	}
	return out
}

func failedResult(msg string) Result {
	return Result{Steps: []string{}, Warnings: []string{}, Errors: []string{msg}}
}
