package models

import (
	"slices"
	"time"
)

// ReportStatus is the overall outcome of one orchestration.
type ReportStatus string

const (
	ReportSuccess ReportStatus = "success"
	ReportPartial ReportStatus = "partial"
	ReportFailed  ReportStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportSuccess, ReportPartial, ReportFailed:
		return true
	default:
		return false
	}
}

// EngineKind names the engine that produced a report.
type EngineKind string

const (
	EngineStandard EngineKind = "standard"
	EngineAgentic  EngineKind = "agentic"
)

// AgenticOutcome is the engine-specific part of an agentic report.
type AgenticOutcome struct {
	// ExecutionID is the audit correlation id, also used as the report key.
	ExecutionID string   `json:"execution_id"`
	Steps       []string `json:"steps"`
	Warnings    []string `json:"warnings,omitempty"`
	Errors      []string `json:"errors,omitempty"`
	Output      string   `json:"output,omitempty"`
}

// Summary aggregates statistics over a report's results.
type Summary struct {
	Engine               EngineKind  `json:"engine"`
	TotalTasks           int         `json:"total_tasks"`
	SuccessfulTasks      int         `json:"successful_tasks"`
	FailedTasks          int         `json:"failed_tasks"`
	SuccessRate          float64     `json:"success_rate"`
	TotalDurationSeconds float64     `json:"total_duration_seconds"`
	AverageTaskDuration  float64     `json:"average_task_duration"`
	TasksByPriority      map[int]int `json:"tasks_by_priority,omitempty"`
	Errors               []string    `json:"errors,omitempty"`
	Steps                []string    `json:"steps,omitempty"`
	Warnings             []string    `json:"warnings,omitempty"`
}

// Report is the immutable record of one orchestration.
type Report struct {
	// ID is the plan id (standard) or execution id (agentic).
	ID               string            `json:"id"`
	Objective        string            `json:"objective"`
	Status           ReportStatus      `json:"status"`
	Engine           EngineKind        `json:"engine"`
	PlanID           string            `json:"plan_id,omitempty"`
	Plan             *Plan             `json:"plan,omitempty"`
	ExecutionResults []ExecutionResult `json:"execution_results,omitempty"`
	Agentic          *AgenticOutcome   `json:"agentic,omitempty"`
	Summary          Summary           `json:"summary"`
	CreatedAt        time.Time         `json:"created_at"`
	CompletedAt      time.Time         `json:"completed_at"`
	DurationSeconds  float64           `json:"duration_seconds"`
}

// Clone returns a deep copy so stored reports never share mutable state
// with callers.
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	c := *r
	c.Plan = r.Plan.Snapshot()
	c.ExecutionResults = slices.Clone(r.ExecutionResults)
	if r.Agentic != nil {
		a := *r.Agentic
		a.Steps = slices.Clone(r.Agentic.Steps)
		a.Warnings = slices.Clone(r.Agentic.Warnings)
		a.Errors = slices.Clone(r.Agentic.Errors)
		c.Agentic = &a
	}
	if r.Summary.TasksByPriority != nil {
		c.Summary.TasksByPriority = make(map[int]int, len(r.Summary.TasksByPriority))
		for k, v := range r.Summary.TasksByPriority {
			c.Summary.TasksByPriority[k] = v
		}
	}
	c.Summary.Errors = slices.Clone(r.Summary.Errors)
	c.Summary.Steps = slices.Clone(r.Summary.Steps)
	c.Summary.Warnings = slices.Clone(r.Summary.Warnings)
	return &c
}
