// Package executor runs intents and plans against the tool registry.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/codi/internal/action"
	"github.com/ShayCichocki/codi/internal/graph"
	"github.com/ShayCichocki/codi/internal/logging"
	"github.com/ShayCichocki/codi/internal/orchestrator/policy"
	"github.com/ShayCichocki/codi/internal/tools"
	"github.com/ShayCichocki/codi/pkg/models"
)

// ErrCapabilityTimeout is reported when a capability call exceeds its timeout.
var ErrCapabilityTimeout = errors.New("capability call timed out")

// Invoker routes an action to a named capability.
type Invoker interface {
	Invoke(ctx context.Context, name string, action models.Action) (any, error)
}

// Executor builds actions from intents and invokes them. It holds no
// per-call state and is safe for concurrent use.
type Executor struct {
	builder     *action.Builder
	tools       Invoker
	timeout     time.Duration
	maxParallel int
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithPolicy applies timeout and concurrency limits from p.
func WithPolicy(p *policy.Config) Option {
	return func(e *Executor) {
		if p == nil {
			return
		}
		e.timeout = p.Timeouts.Capability
		e.maxParallel = p.Executor.MaxParallelIntents
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the time source used for durations and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an executor.
func New(builder *action.Builder, tools Invoker, opts ...Option) *Executor {
	d := policy.Default()
	e := &Executor{
		builder:     builder,
		tools:       tools,
		timeout:     d.Timeouts.Capability,
		maxParallel: d.Executor.MaxParallelIntents,
		logger:      logging.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.maxParallel < 1 {
		e.maxParallel = 1
	}
	e.logger = e.logger.With("component", "executor")
	return e
}

// ExecuteIntents runs every intent and returns one record per intent, in
// input order. A failing intent never stops the others. Intents whose
// workspace footprints overlap run one after another in input order; only
// independent intents run in parallel. Once ctx is cancelled, intents that
// have not started are reported as cancelled.
func (e *Executor) ExecuteIntents(ctx context.Context, intents []models.Intent) []models.IntentResult {
	results := make([]models.IntentResult, len(intents))
	lanes := e.lanes(intents)
	e.logger.Info("executing intents", "count", len(intents), "lanes", len(lanes))

	var g errgroup.Group
	g.SetLimit(e.maxParallel)
	for _, lane := range lanes {
		if ctx.Err() != nil {
			for _, i := range lane {
				results[i] = cancelled(intents[i], ctx.Err())
			}
			continue
		}
		g.Go(func() error {
			for _, i := range lane {
				results[i] = e.executeOne(ctx, i, intents[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// lanes groups intent indexes so that any two intents with overlapping
// footprints share a lane. Each lane keeps input order. Intents that touch
// no path, or fail to build, get a lane of their own.
func (e *Executor) lanes(intents []models.Intent) [][]int {
	prints := make([][]string, len(intents))
	parent := make([]int, len(intents))
	for i, in := range intents {
		parent[i] = i
		if act, err := e.builder.Build(in); err == nil {
			prints[i] = footprint(act)
		}
	}

	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for i := range intents {
		for j := 0; j < i; j++ {
			if overlaps(prints[i], prints[j]) {
				parent[find(i)] = find(j)
			}
		}
	}

	var lanes [][]int
	byRoot := make(map[int]int)
	for i := range intents {
		r := find(i)
		if l, ok := byRoot[r]; ok {
			lanes[l] = append(lanes[l], i)
			continue
		}
		byRoot[r] = len(lanes)
		lanes = append(lanes, []int{i})
	}
	return lanes
}

// footprint returns the cleaned workspace paths an action reads or writes.
// A directory path covers everything beneath it. Actions of unknown kind
// cover the whole workspace.
func footprint(act models.Action) []string {
	switch p := act.Params.(type) {
	case models.AnswerQuestionParams:
		return nil
	case models.CreateFileParams:
		return []string{filepath.Clean(p.Filename)}
	case models.AnalyzeTextParams:
		return []string{filepath.Clean(p.Path)}
	case models.InspectZipParams:
		zip := filepath.Clean(p.ZipPath)
		return []string{zip, tools.ExtractDir(zip)}
	case models.WriteCodeParams:
		return []string{filepath.Clean(p.Path)}
	case models.ListDirectoryParams:
		return []string{filepath.Clean(p.Path)}
	default:
		return []string{"."}
	}
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if filepath.IsAbs(x) != filepath.IsAbs(y) || within(x, y) || within(y, x) {
				return true
			}
		}
	}
	return false
}

// within reports whether path p equals dir or lies beneath it.
func within(p, dir string) bool {
	if dir == "." || p == dir {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(p, strings.TrimSuffix(dir, sep)+sep)
}

func (e *Executor) executeOne(ctx context.Context, idx int, in models.Intent) models.IntentResult {
	if err := ctx.Err(); err != nil {
		return cancelled(in, err)
	}

	act, err := e.builder.Build(in)
	if err != nil {
		e.logger.Warn("intent rejected", "index", idx, "intent", in.Name, "error", err)
		return models.IntentResult{
			ActionType: in.Name,
			Status:     models.ResultError,
			Error:      fmt.Sprintf("validation error: %v", err),
			ErrorKind:  models.ErrorKindValidation,
		}
	}

	e.logger.Debug("invoking tool", "index", idx, "tool", act.Tool, "action", act.Type)
	out, err := e.invoke(ctx, act)
	if err != nil {
		e.logger.Error("intent failed", "index", idx, "action", act.Type, "error", err)
		return models.IntentResult{
			ActionType: string(act.Type),
			Status:     models.ResultError,
			Error:      fmt.Sprintf("runtime error: %v", err),
			ErrorKind:  models.ErrorKindRuntime,
		}
	}
	return models.IntentResult{ActionType: string(act.Type), Status: models.ResultSuccess, Result: out}
}

// invoke runs one capability call bounded by the capability timeout. The
// call is detached from ctx cancellation so an in-flight call always
// finishes or times out.
func (e *Executor) invoke(ctx context.Context, act models.Action) (any, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	type outcome struct {
		val any
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("capability %s panicked: %v", act.Tool, r)}
			}
		}()
		v, err := e.tools.Invoke(callCtx, act.Tool, act)
		done <- outcome{val: v, err: err}
	}()

	select {
	case o := <-done:
		return o.val, o.err
	case <-callCtx.Done():
		return nil, fmt.Errorf("%w: %s after %s", ErrCapabilityTimeout, act.Tool, e.timeout)
	}
}

func cancelled(in models.Intent, err error) models.IntentResult {
	return models.IntentResult{
		ActionType: in.Name,
		Status:     models.ResultError,
		Error:      fmt.Sprintf("not started: %v", err),
		ErrorKind:  models.ErrorKindCancelled,
	}
}

// ExecutePlan runs plan tasks sequentially in stored order and stops at the
// first failing task. Task status, result and error are updated in place.
// Cancelling ctx stops before the next task starts; that task is recorded
// as failed so a cancelled plan never reads as complete.
func (e *Executor) ExecutePlan(ctx context.Context, plan *models.Plan) []models.ExecutionResult {
	results := make([]models.ExecutionResult, 0, len(plan.Tasks))
	if _, err := graph.FromPlan(plan); err != nil {
		e.logger.Warn("plan order not verified", "error", err)
	}
	e.logger.Info("executing plan", "tasks", len(plan.Tasks))

	for _, task := range plan.Tasks {
		if err := ctx.Err(); err != nil {
			e.logger.Warn("plan execution cancelled", "next_task", task.ID, "error", err)
			msg := fmt.Sprintf("cancelled: %v", err)
			task.Status = models.TaskStatusFailed
			task.Error = msg
			results = append(results, models.ExecutionResult{
				TaskID:    task.ID,
				TaskTitle: task.Title,
				Status:    models.TaskStatusFailed,
				Error:     msg,
				Timestamp: e.now(),
			})
			break
		}

		start := e.now()
		out, err := e.runTask(ctx, task)
		end := e.now()

		res := models.ExecutionResult{
			TaskID:          task.ID,
			TaskTitle:       task.Title,
			DurationSeconds: end.Sub(start).Seconds(),
			Timestamp:       end,
		}
		if err != nil {
			task.Status = models.TaskStatusFailed
			task.Error = err.Error()
			res.Status = models.TaskStatusFailed
			res.Error = err.Error()
			results = append(results, res)
			e.logger.Error("task failed", "task", task.ID, "title", task.Title, "error", err)
			break
		}

		task.Status = models.TaskStatusSuccess
		task.Result = out
		res.Status = models.TaskStatusSuccess
		res.Result = out
		results = append(results, res)
		e.logger.Debug("task completed", "task", task.ID, "title", task.Title)
	}
	return results
}

func (e *Executor) runTask(ctx context.Context, task *models.Task) (any, error) {
	if task.Intent != nil {
		return e.runIntent(ctx, *task.Intent)
	}

	inf := Infer(task)
	if inf.Intent == nil {
		return inf.Simulated, nil
	}
	e.logger.Debug("inferred intent", "task", task.ID, "intent", inf.Intent.Name, "rule", inf.Rule)
	return e.runIntent(ctx, *inf.Intent)
}

func (e *Executor) runIntent(ctx context.Context, in models.Intent) (any, error) {
	r := e.ExecuteIntents(ctx, []models.Intent{in})[0]
	if !r.OK() {
		return nil, errors.New(r.Error)
	}
	return r.Result, nil
}
