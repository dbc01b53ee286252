package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/codi/internal/orchestrator"
	"github.com/ShayCichocki/codi/pkg/models"
)

func send(a *App, msgs ...tea.Msg) {
	for _, m := range msgs {
		a.Update(m)
	}
}

func TestNew(t *testing.T) {
	app := New("create notes.txt")

	if app.objective != "create notes.txt" {
		t.Errorf("objective = %q, want %q", app.objective, "create notes.txt")
	}
	if app.phase != "waiting" {
		t.Errorf("phase = %q, want waiting", app.phase)
	}
	if app.Init() == nil {
		t.Error("Init should start the spinner")
	}
}

func TestApp_HandlesEventSequence(t *testing.T) {
	app := New("analyze a.txt")
	now := time.Now()

	send(app,
		EventMsg{orchestrator.Event{Type: orchestrator.EventReceived, Timestamp: now}},
		EventMsg{orchestrator.Event{Type: orchestrator.EventEngineSelected, Engine: models.EngineAgentic, Timestamp: now}},
		EventMsg{orchestrator.Event{Type: orchestrator.EventExecuting, Timestamp: now}},
		EventMsg{orchestrator.Event{Type: orchestrator.EventTaskCompleted, TaskID: 1, TaskTitle: "analyze_text", Timestamp: now}},
		EventMsg{orchestrator.Event{Type: orchestrator.EventTaskFailed, TaskID: 2, TaskTitle: "inspect_zip", Message: "no such file", Timestamp: now}},
	)

	if app.engine != models.EngineAgentic {
		t.Errorf("engine = %q, want agentic", app.engine)
	}
	if app.phase != "executing" {
		t.Errorf("phase = %q, want executing", app.phase)
	}
	if len(app.tasks) != 2 {
		t.Fatalf("len(tasks) = %d, want 2", len(app.tasks))
	}
	if app.tasks[0].failed || !app.tasks[1].failed {
		t.Errorf("unexpected task states: %+v", app.tasks)
	}
	if app.tasks[1].detail != "no such file" {
		t.Errorf("failed detail = %q", app.tasks[1].detail)
	}
	if got := app.logs[len(app.logs)-1].Level; got != "ERROR" {
		t.Errorf("last log level = %q, want ERROR", got)
	}

	view := app.View()
	for _, want := range []string{"analyze a.txt", "analyze_text", "inspect_zip: no such file"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestApp_LogIsBounded(t *testing.T) {
	app := New("x")
	for i := 0; i < maxLogEntries*2; i++ {
		send(app, EventMsg{orchestrator.Event{Type: orchestrator.EventExecuting}})
	}
	if len(app.logs) != maxLogEntries {
		t.Errorf("len(logs) = %d, want %d", len(app.logs), maxLogEntries)
	}
}

func TestApp_DoneWithReport(t *testing.T) {
	app := New("create notes.txt")
	report := &models.Report{
		ID:        "plan_20260101_120000",
		Objective: "create notes.txt",
		Status:    models.ReportSuccess,
		Engine:    models.EngineStandard,
		ExecutionResults: []models.ExecutionResult{
			{TaskID: 1, TaskTitle: "Analyze objective", Status: models.TaskStatusSuccess},
		},
		Summary: models.Summary{TotalTasks: 1, SuccessfulTasks: 1, SuccessRate: 100},
	}

	send(app, DoneMsg{Report: report})

	got, err := app.Report()
	if err != nil || got != report {
		t.Fatalf("Report() = %v, %v", got, err)
	}
	if app.phase != "done" {
		t.Errorf("phase = %q, want done", app.phase)
	}
	view := app.View()
	if !strings.Contains(view, "plan_20260101_120000") {
		t.Error("view should render the report id")
	}
	if !strings.Contains(view, "Press q to exit") {
		t.Error("footer should offer exit once done")
	}
}

func TestApp_DoneWithError(t *testing.T) {
	app := New("")
	send(app, DoneMsg{Err: errors.New("objective is empty")})

	if app.phase != "failed" {
		t.Errorf("phase = %q, want failed", app.phase)
	}
	if !strings.Contains(app.View(), "objective is empty") {
		t.Error("view should show the error")
	}
}

func TestApp_Quit(t *testing.T) {
	app := New("x")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if app.View() != "Goodbye!\n" {
		t.Errorf("unexpected view after quit: %q", app.View())
	}
}

func TestApp_WindowSize(t *testing.T) {
	app := New("x")
	send(app, tea.WindowSizeMsg{Width: 120, Height: 40})
	if app.width != 120 || app.header.width != 120 {
		t.Errorf("width not propagated: app=%d header=%d", app.width, app.header.width)
	}
}

func TestRenderReport(t *testing.T) {
	if RenderReport(nil, 80) != "" {
		t.Error("nil report should render empty")
	}

	r := &models.Report{
		ID:     "exec-1",
		Status: models.ReportFailed,
		Engine: models.EngineAgentic,
		Agentic: &models.AgenticOutcome{
			Steps:    []string{"Step 1: Analyzed goal (1 intent(s) proposed)"},
			Warnings: []string{"no intents proposed for goal"},
		},
		Summary: models.Summary{Errors: []string{"plan: reasoning unavailable"}},
	}
	out := RenderReport(r, 100)
	for _, want := range []string{"exec-1", "Step 1: Analyzed goal", "no intents proposed", "plan: reasoning unavailable"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered report missing %q", want)
		}
	}
}
