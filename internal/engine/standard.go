package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ShayCichocki/codi/internal/executor"
	"github.com/ShayCichocki/codi/internal/logging"
	"github.com/ShayCichocki/codi/internal/planner"
	"github.com/ShayCichocki/codi/pkg/models"
)

// StandardRun is the full outcome of a standard run.
type StandardRun struct {
	PlanID  string                   `json:"plan_id"`
	Plan    *models.Plan             `json:"plan"`
	Results []models.ExecutionResult `json:"results"`
}

// Standard decomposes the objective with the planner and runs the plan with
// the executor.
type Standard struct {
	planner  *planner.Planner
	executor *executor.Executor
	logger   *slog.Logger
}

// NewStandard returns a standard engine.
func NewStandard(p *planner.Planner, e *executor.Executor, logger *slog.Logger) *Standard {
	return &Standard{
		planner:  p,
		executor: e,
		logger:   logging.OrNop(logger).With("component", "engine", "engine", "standard"),
	}
}

// Execute plans and runs objective. Task failures are captured in the
// returned results; only planning errors are returned.
func (s *Standard) Execute(ctx context.Context, objective string) (*StandardRun, error) {
	plan, id, err := s.planner.AnalyzeObjective(objective)
	if err != nil {
		return nil, fmt.Errorf("analyze objective: %w", err)
	}

	results := s.executor.ExecutePlan(ctx, plan)
	for _, r := range results {
		if err := s.planner.UpdateTaskStatus(id, r.TaskID, r.Status, r.Result, r.Error); err != nil {
			s.logger.Warn("task status not stored", "plan_id", id, "task", r.TaskID, "error", err)
		}
	}

	s.logger.Info("plan executed", "plan_id", id, "executed", len(results), "tasks", plan.TotalTasks)
	return &StandardRun{PlanID: id, Plan: plan, Results: results}, nil
}

// Run implements Engine.
func (s *Standard) Run(ctx context.Context, goal string, _ map[string]any) (Result, error) {
	run, err := s.Execute(ctx, goal)
	if err != nil {
		return Result{}, err
	}

	res := Result{Steps: []string{}, Warnings: []string{}, Errors: []string{}, Output: run}
	for _, r := range run.Results {
		res.Steps = append(res.Steps, fmt.Sprintf("Task %d: %s (%s)", r.TaskID, r.TaskTitle, r.Status))
		if !r.OK() {
			res.Errors = append(res.Errors, fmt.Sprintf("Task %d: %s", r.TaskID, r.Error))
		}
	}
	if skipped := run.Plan.TotalTasks - len(run.Results); skipped > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d task(s) not executed", skipped))
	}
	return res, nil
}
