package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/codi/internal/action"
	"github.com/ShayCichocki/codi/internal/audit"
	"github.com/ShayCichocki/codi/internal/executor"
	"github.com/ShayCichocki/codi/internal/orchestrator/policy"
	"github.com/ShayCichocki/codi/internal/planner"
	"github.com/ShayCichocki/codi/internal/reasoning"
	"github.com/ShayCichocki/codi/internal/tools"
	"github.com/ShayCichocki/codi/pkg/models"
)

// workspace returns an executor wired to real tools rooted in a temp dir.
func workspace(t *testing.T) (string, *executor.Executor) {
	t.Helper()
	root := t.TempDir()
	guard, err := tools.NewGuard(root)
	require.NoError(t, err)
	reg := tools.NewRegistry()
	require.NoError(t, tools.RegisterDefaults(reg, guard, reasoning.Rules{}))

	p := policy.Default()
	p.Executor.MaxParallelIntents = 1
	return root, executor.New(action.NewBuilder(action.WithSystemIntents()), reg, executor.WithPolicy(p))
}

type proposeFunc func(ctx context.Context, goal string, input map[string]any) ([]models.Intent, error)

func (f proposeFunc) Propose(ctx context.Context, goal string, input map[string]any) ([]models.Intent, error) {
	return f(ctx, goal, input)
}

type captureSink struct {
	mu   sync.Mutex
	recs []audit.Record
}

func (c *captureSink) Record(rec audit.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs = append(c.recs, rec)
}

func TestStandard_Execute(t *testing.T) {
	root, exec := workspace(t)
	pl := planner.New()
	s := NewStandard(pl, exec, nil)

	run, err := s.Execute(context.Background(), "Create a file called notes.txt with the text hello world")
	require.NoError(t, err)
	require.NotEmpty(t, run.PlanID)
	assert.Len(t, run.Results, run.Plan.TotalTasks)
	for _, r := range run.Results {
		assert.True(t, r.OK(), "task %d: %s", r.TaskID, r.Error)
	}

	data, err := os.ReadFile(filepath.Join(root, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	stored, err := pl.GetPlan(run.PlanID)
	require.NoError(t, err)
	for _, task := range stored.Tasks {
		assert.Equal(t, models.TaskStatusSuccess, task.Status, "stored task %d", task.ID)
	}
}

func TestStandard_RunFailFast(t *testing.T) {
	_, exec := workspace(t)
	s := NewStandard(planner.New(), exec, nil)

	res, err := s.Run(context.Background(), "analyze missing.txt", nil)
	require.NoError(t, err)

	run := res.Output.(*StandardRun)
	require.Len(t, run.Results, 1)
	assert.Equal(t, models.TaskStatusFailed, run.Results[0].Status)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Task 1:")
	assert.Len(t, res.Steps, 1)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "not executed")
}

func TestStandard_EmptyObjective(t *testing.T) {
	_, exec := workspace(t)
	_, err := NewStandard(planner.New(), exec, nil).Run(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, planner.ErrEmptyObjective)
}

func TestAgentic_PlanThenExecute(t *testing.T) {
	root, exec := workspace(t)
	a := NewAgentic(reasoning.Rules{}, exec, time.Second, nil)

	res, err := a.Run(context.Background(), "create a.txt with the text hi, then analyze a.txt", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{
		"Step 1: Analyzed goal (2 intent(s) proposed)",
		"Step 2: Executed 2 action(s), 0 failed",
	}, res.Steps)

	results := res.Output.([]models.IntentResult)
	require.Len(t, results, 2)
	analysis, ok := results[1].Result.(tools.TextAnalysis)
	require.True(t, ok)
	assert.Equal(t, 1, analysis.Words)

	_, err = os.Stat(filepath.Join(root, "a.txt"))
	assert.NoError(t, err)
}

func TestAgentic_CollectsIntentFailures(t *testing.T) {
	_, exec := workspace(t)
	r := proposeFunc(func(context.Context, string, map[string]any) ([]models.Intent, error) {
		return []models.Intent{
			{Name: "launch_rocket"},
			{Name: "create_file", Params: map[string]any{"filename": "ok.txt"}},
			{Name: "analyze_text", Params: map[string]any{"path": "nope.txt"}},
		}, nil
	})
	res, err := NewAgentic(r, exec, time.Second, nil).Run(context.Background(), "goal", nil)
	require.NoError(t, err)
	require.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0], "intent 1 (launch_rocket)")
	assert.Contains(t, res.Errors[1], "intent 3 (analyze_text)")
	assert.Contains(t, res.Steps[1], "3 action(s), 2 failed")
}

func TestAgentic_NoIntentsWarns(t *testing.T) {
	_, exec := workspace(t)
	res, err := NewAgentic(reasoning.Rules{}, exec, time.Second, nil).Run(context.Background(), "hum", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{"no intents proposed for goal"}, res.Warnings)
	assert.Len(t, res.Steps, 1)
}

func TestAgentic_ReasonerFailures(t *testing.T) {
	_, exec := workspace(t)

	res, err := NewAgentic(reasoning.Unavailable{}, exec, time.Second, nil).Run(context.Background(), "goal", nil)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], reasoning.ErrReasoningUnavailable.Error())
	assert.Empty(t, res.Steps)

	res, err = NewAgentic(nil, exec, time.Second, nil).Run(context.Background(), "goal", nil)
	require.NoError(t, err)
	assert.Len(t, res.Errors, 1)
}

func TestAgentic_ReasonerTimeout(t *testing.T) {
	_, exec := workspace(t)
	slow := proposeFunc(func(ctx context.Context, _ string, _ map[string]any) ([]models.Intent, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	start := time.Now()
	res, err := NewAgentic(slow, exec, 20*time.Millisecond, nil).Run(context.Background(), "goal", nil)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "runtime error")
	assert.Contains(t, res.Errors[0], context.DeadlineExceeded.Error())
}

func TestAudited_ExactlyOneRecord(t *testing.T) {
	tests := []struct {
		name       string
		inner      Engine
		wantSteps  int
		wantErrors []string
	}{
		{
			name: "success",
			inner: Func(func(context.Context, string, map[string]any) (Result, error) {
				return Result{Steps: []string{"a", "b"}}, nil
			}),
			wantSteps:  2,
			wantErrors: []string{},
		},
		{
			name: "error",
			inner: Func(func(context.Context, string, map[string]any) (Result, error) {
				return Result{Steps: []string{"ignored"}}, errors.New("engine exploded")
			}),
			wantErrors: []string{"engine exploded"},
		},
		{
			name: "panic",
			inner: Func(func(context.Context, string, map[string]any) (Result, error) {
				panic("kaboom")
			}),
			wantErrors: []string{"engine panic: kaboom"},
		},
		{
			name:       "nil engine",
			inner:      nil,
			wantErrors: []string{"no engine configured"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &captureSink{}
			res := NewAudited(tt.inner, sink, nil).Run(context.Background(), "exec-1", "the goal", nil)

			assert.Len(t, res.Steps, tt.wantSteps)
			assert.Equal(t, tt.wantErrors, res.Errors)

			require.Len(t, sink.recs, 1)
			rec := sink.recs[0]
			assert.Equal(t, "exec-1", rec.ExecutionID)
			assert.Equal(t, "the goal", rec.Goal)
			assert.Len(t, rec.Steps, tt.wantSteps)
			assert.Equal(t, tt.wantErrors, rec.Errors)
			assert.False(t, rec.Timestamp.IsZero())
		})
	}
}

func TestAudited_SinkPanicDoesNotEscape(t *testing.T) {
	sink := audit.SinkFunc(func(audit.Record) { panic("sink down") })
	inner := Func(func(context.Context, string, map[string]any) (Result, error) {
		return Result{Steps: []string{"x"}}, nil
	})
	var res Result
	assert.NotPanics(t, func() {
		res = NewAudited(inner, sink, nil).Run(context.Background(), "id", "g", nil)
	})
	assert.Equal(t, []string{"x"}, res.Steps)
}
