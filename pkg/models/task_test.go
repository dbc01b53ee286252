package models

import (
	"testing"
	"time"
)

func TestTaskStatus_Valid(t *testing.T) {
	tests := []struct {
		name   string
		status TaskStatus
		want   bool
	}{
		{"pending is valid", TaskStatusPending, true},
		{"success is valid", TaskStatusSuccess, true},
		{"failed is valid", TaskStatusFailed, true},
		{"empty string is invalid", TaskStatus(""), false},
		{"unknown status is invalid", TaskStatus("done"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("TaskStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestReportStatus_Valid(t *testing.T) {
	for _, s := range []ReportStatus{ReportSuccess, ReportPartial, ReportFailed} {
		if !s.Valid() {
			t.Errorf("ReportStatus(%q).Valid() = false, want true", s)
		}
	}
	if ReportStatus("ok").Valid() {
		t.Error("ReportStatus(\"ok\").Valid() = true, want false")
	}
}

func TestPlan_SnapshotIsDeep(t *testing.T) {
	plan := &Plan{
		Objective: "build a thing",
		CreatedAt: time.Now(),
		Tasks: []*Task{
			{ID: 1, Title: "Analyze objective", Status: TaskStatusPending},
			{ID: 2, Title: "Plan execution", Dependencies: []int{1}, Status: TaskStatusPending,
				Intent: &Intent{Name: "create_file", Params: map[string]any{"filename": "a.txt"}}},
		},
		TotalTasks: 2,
		Status:     PlanStatusCreated,
	}

	snap := plan.Snapshot()
	plan.Tasks[0].Status = TaskStatusFailed
	plan.Tasks[1].Dependencies[0] = 99
	plan.Tasks[1].Intent.Params["filename"] = "b.txt"

	if snap.Tasks[0].Status != TaskStatusPending {
		t.Errorf("snapshot status = %q, want pending", snap.Tasks[0].Status)
	}
	if snap.Tasks[1].Dependencies[0] != 1 {
		t.Errorf("snapshot dependency = %d, want 1", snap.Tasks[1].Dependencies[0])
	}
	if got := snap.Tasks[1].Intent.Params["filename"]; got != "a.txt" {
		t.Errorf("snapshot intent filename = %v, want a.txt", got)
	}
}

func TestPlan_Task(t *testing.T) {
	plan := &Plan{Tasks: []*Task{{ID: 1}, {ID: 4}}}
	if plan.Task(4) == nil {
		t.Fatal("Task(4) = nil, want task")
	}
	if plan.Task(2) != nil {
		t.Error("Task(2) should be nil")
	}
}

func TestParamsType(t *testing.T) {
	tests := []struct {
		params ActionParams
		want   ActionType
	}{
		{CreateFileParams{Filename: "x"}, ActionCreateFile},
		{AnalyzeTextParams{}, ActionAnalyzeText},
		{InspectZipParams{}, ActionInspectZip},
		{AnswerQuestionParams{}, ActionAnswerQuestion},
		{ListDirectoryParams{}, ActionListDirectory},
		{WriteCodeParams{}, ActionWriteCode},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := ParamsType(tt.params); got != tt.want {
			t.Errorf("ParamsType(%T) = %q, want %q", tt.params, got, tt.want)
		}
	}
}

func TestReport_CloneIsIndependent(t *testing.T) {
	r := &Report{
		ID:      "exec-1",
		Agentic: &AgenticOutcome{Steps: []string{"plan"}, Errors: []string{"boom"}},
		Summary: Summary{TasksByPriority: map[int]int{1: 2}, Errors: []string{"boom"}},
	}
	c := r.Clone()
	r.Agentic.Steps[0] = "changed"
	r.Summary.TasksByPriority[1] = 7
	r.Summary.Errors[0] = "changed"

	if c.Agentic.Steps[0] != "plan" {
		t.Errorf("clone steps mutated: %v", c.Agentic.Steps)
	}
	if c.Summary.TasksByPriority[1] != 2 {
		t.Errorf("clone priority map mutated: %v", c.Summary.TasksByPriority)
	}
	if c.Summary.Errors[0] != "boom" {
		t.Errorf("clone errors mutated: %v", c.Summary.Errors)
	}
}
