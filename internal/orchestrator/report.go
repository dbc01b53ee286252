package orchestrator

import (
	"fmt"
	"time"

	"github.com/ShayCichocki/codi/internal/engine"
	"github.com/ShayCichocki/codi/pkg/models"
)

// StandardStatus derives the report status of a plan run of totalTasks
// tasks: success when every task ran and succeeded, partial when at least
// one succeeded, failed otherwise.
func StandardStatus(results []models.ExecutionResult, totalTasks int) models.ReportStatus {
	if len(results) == 0 {
		return models.ReportFailed
	}
	ok := 0
	for _, r := range results {
		if r.OK() {
			ok++
		}
	}
	switch {
	case ok == len(results) && len(results) >= totalTasks:
		return models.ReportSuccess
	case ok > 0:
		return models.ReportPartial
	default:
		return models.ReportFailed
	}
}

// AgenticStatus derives the report status of an agentic run. There is no
// partial state: any error fails the run.
func AgenticStatus(res engine.Result) models.ReportStatus {
	if len(res.Errors) == 0 {
		return models.ReportSuccess
	}
	return models.ReportFailed
}

func assembleStandard(run *engine.StandardRun) *models.Report {
	return &models.Report{
		ID:               run.PlanID,
		Status:           StandardStatus(run.Results, run.Plan.TotalTasks),
		Engine:           models.EngineStandard,
		PlanID:           run.PlanID,
		Plan:             run.Plan.Snapshot(),
		ExecutionResults: append([]models.ExecutionResult(nil), run.Results...),
		Summary:          standardSummary(run.Plan, run.Results),
	}
}

func standardSummary(plan *models.Plan, results []models.ExecutionResult) models.Summary {
	s := models.Summary{
		Engine:          models.EngineStandard,
		TotalTasks:      plan.TotalTasks,
		TasksByPriority: make(map[int]int),
	}
	for _, r := range results {
		if r.OK() {
			s.SuccessfulTasks++
		} else {
			s.FailedTasks++
		}
		s.TotalDurationSeconds += r.DurationSeconds
		if r.Error != "" {
			s.Errors = append(s.Errors, r.Error)
		}
	}
	if plan.TotalTasks > 0 {
		s.SuccessRate = float64(s.SuccessfulTasks) / float64(plan.TotalTasks) * 100
		s.AverageTaskDuration = s.TotalDurationSeconds / float64(plan.TotalTasks)
	}
	for _, t := range plan.Tasks {
		s.TasksByPriority[t.Priority]++
	}
	return s
}

// assembleAgentic maps each intent outcome to an execution result so both
// engines produce the same report shape.
func assembleAgentic(id string, res engine.Result, at time.Time) *models.Report {
	intents, _ := res.Output.([]models.IntentResult)

	results := make([]models.ExecutionResult, 0, len(intents))
	for i, ir := range intents {
		er := models.ExecutionResult{
			TaskID:    i + 1,
			TaskTitle: ir.ActionType,
			Status:    models.TaskStatusSuccess,
			Result:    ir.Result,
			Timestamp: at,
		}
		if !ir.OK() {
			er.Status = models.TaskStatusFailed
			er.Error = ir.Error
		}
		results = append(results, er)
	}

	ok := 0
	for _, r := range results {
		if r.OK() {
			ok++
		}
	}
	summary := models.Summary{
		Engine:          models.EngineAgentic,
		TotalTasks:      len(results),
		SuccessfulTasks: ok,
		FailedTasks:     len(results) - ok,
		Steps:           append([]string(nil), res.Steps...),
		Warnings:        append([]string(nil), res.Warnings...),
		Errors:          append([]string(nil), res.Errors...),
	}
	if len(results) > 0 {
		summary.SuccessRate = float64(ok) / float64(len(results)) * 100
	}

	return &models.Report{
		ID:               id,
		Status:           AgenticStatus(res),
		Engine:           models.EngineAgentic,
		PlanID:           id,
		ExecutionResults: results,
		Agentic: &models.AgenticOutcome{
			ExecutionID: id,
			Steps:       append([]string(nil), res.Steps...),
			Warnings:    append([]string(nil), res.Warnings...),
			Errors:      append([]string(nil), res.Errors...),
			Output:      fmt.Sprintf("%d action(s) executed, %d failed", len(results), len(results)-ok),
		},
		Summary: summary,
	}
}
