package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/codi/internal/orchestrator"
	"github.com/ShayCichocki/codi/pkg/models"
)

// EventMsg wraps an orchestrator event for the TUI.
type EventMsg struct {
	Event orchestrator.Event
}

// DoneMsg signals that the objective has been processed.
type DoneMsg struct {
	Report *models.Report
	Err    error
}

// LogEntry is one line of the activity log.
type LogEntry struct {
	Timestamp time.Time
	Level     string
	Message   string
}

// maxLogEntries bounds the activity log shown below the task list.
const maxLogEntries = 12

// taskRow is one task or intent as it completes.
type taskRow struct {
	id     int
	title  string
	failed bool
	detail string
}

// App is the bubbletea model for a single objective run.
type App struct {
	objective string
	engine    models.EngineKind
	phase     string
	tasks     []taskRow
	logs      []LogEntry

	spinner spinner.Model
	header  *Header

	width    int
	height   int
	quitting bool

	done   bool
	report *models.Report
	err    error
}

// New creates a new App for objective.
func New(objective string) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = hintStyle
	return &App{
		objective: objective,
		phase:     "waiting",
		spinner:   s,
		header:    NewHeader(),
	}
}

// NewProgram creates a new bubbletea program for objective. The returned
// program receives EventMsg and DoneMsg via Send.
func NewProgram(objective string) (*tea.Program, *App) {
	app := New(objective)
	return tea.NewProgram(app, tea.WithAltScreen()), app
}

// Forward converts orchestrator events to TUI messages until events closes.
func Forward(p *tea.Program, events <-chan orchestrator.Event) {
	for ev := range events {
		p.Send(EventMsg{Event: ev})
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.spinner.Tick
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.header.SetWidth(msg.Width)

	case spinner.TickMsg:
		if a.done {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case EventMsg:
		a.handleEvent(msg.Event)

	case DoneMsg:
		a.done = true
		a.report = msg.Report
		a.err = msg.Err
		if msg.Err != nil {
			a.phase = "failed"
		} else {
			a.phase = "done"
		}
	}

	return a, nil
}

// handleEvent records an orchestrator event.
func (a *App) handleEvent(ev orchestrator.Event) {
	level := "INFO"
	msg := string(ev.Type)

	switch ev.Type {
	case orchestrator.EventReceived:
		a.phase = "received"
	case orchestrator.EventEngineSelected:
		a.engine = ev.Engine
		a.phase = "engine selected"
		msg = fmt.Sprintf("engine selected: %s", ev.Engine)
	case orchestrator.EventExecuting:
		a.phase = "executing"
	case orchestrator.EventTaskCompleted, orchestrator.EventTaskFailed:
		row := taskRow{id: ev.TaskID, title: ev.TaskTitle}
		if ev.Type == orchestrator.EventTaskFailed {
			row.failed = true
			row.detail = ev.Message
			level = "ERROR"
		}
		a.tasks = append(a.tasks, row)
		msg = fmt.Sprintf("%s: %d. %s", ev.Type, ev.TaskID, ev.TaskTitle)
	case orchestrator.EventReportAssembled:
		a.phase = "assembling report"
		msg = fmt.Sprintf("report %s: %s", ev.ReportID, ev.Status)
	case orchestrator.EventStored:
		a.phase = "stored"
	case orchestrator.EventFailed:
		a.phase = "failed"
		level = "ERROR"
		msg = "failed: " + ev.Message
	}

	a.logs = append(a.logs, LogEntry{Timestamp: ev.Timestamp, Level: level, Message: msg})
	if len(a.logs) > maxLogEntries {
		a.logs = a.logs[len(a.logs)-maxLogEntries:]
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder
	b.WriteString(a.header.View() + "\n")
	b.WriteString(titleStyle.Render("Objective: ") + a.objective + "\n")
	b.WriteString(a.viewStatus() + "\n\n")

	if a.report != nil {
		b.WriteString(RenderReport(a.report, a.width) + "\n")
	} else {
		b.WriteString(a.viewTasks() + "\n")
	}
	b.WriteString("\n" + a.viewLogs())
	b.WriteString("\n" + a.viewFooter())
	return b.String()
}

func (a *App) viewStatus() string {
	engine := "-"
	if a.engine != "" {
		engine = string(a.engine)
	}
	status := fmt.Sprintf("%s %s", labelStyle.Render("engine:"), engine)
	if a.done {
		return status + "  " + labelStyle.Render("phase:") + " " + a.phase
	}
	return status + "  " + a.spinner.View() + " " + a.phase
}

func (a *App) viewTasks() string {
	if len(a.tasks) == 0 {
		return hintStyle.Render("  No tasks completed yet")
	}
	var lines []string
	for _, t := range a.tasks {
		if t.failed {
			lines = append(lines, fmt.Sprintf("  %s %d. %s: %s", failedStyle.Render("✗"), t.id, t.title, t.detail))
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s %d. %s", successStyle.Render("✓"), t.id, t.title))
	}
	return strings.Join(lines, "\n")
}

func (a *App) viewLogs() string {
	if len(a.logs) == 0 {
		return hintStyle.Render("  No activity")
	}
	var lines []string
	for _, entry := range a.logs {
		ts := entry.Timestamp.Format("15:04:05")
		lines = append(lines, hintStyle.Render(fmt.Sprintf("  %s [%s] %s", ts, entry.Level, entry.Message)))
	}
	return strings.Join(lines, "\n")
}

func (a *App) viewFooter() string {
	if !a.done {
		return hintStyle.Render("q to quit")
	}
	if a.err != nil {
		return failedStyle.Render("✗ "+a.err.Error()) + hintStyle.Render(" | Press q to exit")
	}
	return StatusStyle(a.report.Status).Render("✓ "+string(a.report.Status)) + hintStyle.Render(" | Press q to exit")
}

// Report returns the final report, once the run is done.
func (a *App) Report() (*models.Report, error) {
	return a.report, a.err
}
