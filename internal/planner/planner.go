// Package planner decomposes an objective into an ordered, dependency
// annotated plan using a deterministic keyword policy.
package planner

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/ShayCichocki/codi/internal/graph"
	"github.com/ShayCichocki/codi/internal/logging"
	"github.com/ShayCichocki/codi/internal/orchestrator/policy"
	"github.com/ShayCichocki/codi/pkg/models"
)

var (
	// ErrEmptyObjective is returned when the trimmed objective is empty.
	ErrEmptyObjective = errors.New("objective must not be empty")
	// ErrPlanNotFound is returned for unknown plan ids.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrTaskNotFound is returned for unknown task ids within a plan.
	ErrTaskNotFound = errors.New("task not found")
)

// Task titles emitted by the planner.
const (
	TitleAnalyze   = "Analyze objective"
	TitleResources = "Identify resources"
	TitlePlan      = "Plan execution"
	TitleExecute   = "Execute main actions"
	TitleValidate  = "Validate results"
	TitleReport    = "Generate report"
)

// Planner analyzes objectives and owns the plans it creates.
//
// Plan ids have second resolution: two plans created within the same second
// share an id and the later one replaces the earlier one in the store.
type Planner struct {
	policy policy.PlannerPolicy
	logger *slog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	plans map[string]*models.Plan
	order []string
}

// Option configures a Planner.
type Option func(*Planner)

// WithPolicy sets the keyword policy.
func WithPolicy(p policy.PlannerPolicy) Option {
	return func(pl *Planner) { pl.policy = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(pl *Planner) {
		if l != nil {
			pl.logger = l
		}
	}
}

// WithClock overrides the time source used for plan ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(pl *Planner) {
		if now != nil {
			pl.now = now
		}
	}
}

// New creates a planner with an empty plan store.
func New(opts ...Option) *Planner {
	p := &Planner{
		policy: policy.Default().Planner,
		logger: logging.Nop(),
		now:    time.Now,
		plans:  make(map[string]*models.Plan),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "planner")
	return p
}

// AnalyzeObjective decomposes objective into a plan, stores it and returns
// a working copy with its id. Changes to the copy do not reach the store;
// use UpdateTaskStatus for that.
func (p *Planner) AnalyzeObjective(objective string) (*models.Plan, string, error) {
	if strings.TrimSpace(objective) == "" {
		return nil, "", ErrEmptyObjective
	}

	tasks := sanitize(p.decompose(objective))
	if _, err := graph.FromPlan(&models.Plan{Tasks: tasks}); err != nil {
		return nil, "", fmt.Errorf("invalid decomposition: %w", err)
	}

	now := p.now()
	plan := &models.Plan{
		Objective:  objective,
		CreatedAt:  now,
		Tasks:      tasks,
		TotalTasks: len(tasks),
		Status:     models.PlanStatusCreated,
	}
	id := PlanID(now)

	p.mu.Lock()
	if _, exists := p.plans[id]; exists {
		p.logger.Warn("plan id collision, replacing stored plan", "plan_id", id)
	} else {
		p.order = append(p.order, id)
	}
	p.plans[id] = plan
	p.mu.Unlock()

	p.logger.Info("plan created", "plan_id", id, "tasks", len(tasks))
	return plan.Snapshot(), id, nil
}

// PlanID formats the id for a plan created at t.
func PlanID(t time.Time) string {
	return "plan_" + t.Format("20060102150405")
}

func (p *Planner) decompose(objective string) []*models.Task {
	words := tokenize(objective)
	tasks := []*models.Task{{
		ID:          1,
		Title:       TitleAnalyze,
		Description: "Validate and analyze: " + objective,
		Priority:    1,
	}}

	mainDeps := []int{1}
	if matchAny(words, p.policy.CreationVerbs) {
		id := len(tasks) + 1
		tasks = append(tasks, &models.Task{
			ID:           id,
			Title:        TitleResources,
			Description:  "Determine required resources, tools and dependencies",
			Dependencies: []int{1},
			Priority:     2,
		})
		mainDeps = append(mainDeps, id)
	}
	if matchAny(words, p.policy.ActionVerbs) {
		id := len(tasks) + 1
		tasks = append(tasks, &models.Task{
			ID:           id,
			Title:        TitlePlan,
			Description:  "Define the concrete steps and their execution sequence",
			Dependencies: []int{1},
			Priority:     2,
		})
		mainDeps = append(mainDeps, id)
	}

	execID := len(tasks) + 1
	tasks = append(tasks,
		&models.Task{
			ID:           execID,
			Title:        TitleExecute,
			Description:  "Carry out the core actions of the objective",
			Dependencies: mainDeps,
			Priority:     3,
		},
		&models.Task{
			ID:           execID + 1,
			Title:        TitleValidate,
			Description:  "Verify the results satisfy the objective",
			Dependencies: []int{execID},
			Priority:     4,
		},
		&models.Task{
			ID:           execID + 2,
			Title:        TitleReport,
			Description:  "Produce the final report with results and metrics",
			Dependencies: []int{execID + 1},
			Priority:     5,
		},
	)

	for _, t := range tasks {
		t.Status = models.TaskStatusPending
	}
	return tasks
}

// sanitize drops dependency ids that are not in the plan and self references.
// Invalid references are dropped silently rather than rejected.
func sanitize(tasks []*models.Task) []*models.Task {
	valid := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		valid[t.ID] = true
	}
	for _, t := range tasks {
		deps := make([]int, 0, len(t.Dependencies))
		for _, d := range t.Dependencies {
			if valid[d] && d != t.ID {
				deps = append(deps, d)
			}
		}
		t.Dependencies = deps
	}
	return tasks
}

// tokenize lowercases text and splits it into letter/digit words.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// matchAny reports whether any word matches a keyword. Keywords shorter than
// four letters must match a whole word; longer ones match as word prefixes.
func matchAny(words, keywords []string) bool {
	for _, w := range words {
		for _, k := range keywords {
			k = strings.ToLower(k)
			if w == k || (len(k) >= 4 && strings.HasPrefix(w, k)) {
				return true
			}
		}
	}
	return false
}

// GetPlan returns a copy of the stored plan with id.
func (p *Planner) GetPlan(id string) (*models.Plan, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	plan, ok := p.plans[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	return plan.Snapshot(), nil
}

// ListPlans returns stored plan ids in creation order.
func (p *Planner) ListPlans() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.order...)
}

// UpdateTaskStatus sets the status, result and error of one task.
func (p *Planner) UpdateTaskStatus(planID string, taskID int, status models.TaskStatus, result any, errMsg string) error {
	if !status.Valid() {
		return fmt.Errorf("invalid task status %q", status)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	plan, ok := p.plans[planID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPlanNotFound, planID)
	}
	task := plan.Task(taskID)
	if task == nil {
		return fmt.Errorf("%w: %d in %s", ErrTaskNotFound, taskID, planID)
	}
	task.Status = status
	task.Result = result
	task.Error = errMsg
	return nil
}
