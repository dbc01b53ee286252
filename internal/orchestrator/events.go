package orchestrator

import (
	"time"

	"github.com/ShayCichocki/codi/pkg/models"
)

// EventType represents the type of orchestrator event.
type EventType string

const (
	// EventReceived indicates an objective was accepted for processing.
	EventReceived EventType = "received"
	// EventEngineSelected indicates the decision gate picked an engine.
	EventEngineSelected EventType = "engine_selected"
	// EventExecuting indicates the selected engine started.
	EventExecuting EventType = "executing"
	// EventTaskCompleted indicates a plan task or intent succeeded.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed indicates a plan task or intent failed.
	EventTaskFailed EventType = "task_failed"
	// EventReportAssembled indicates the report was built.
	EventReportAssembled EventType = "report_assembled"
	// EventStored indicates the report was stored and is now immutable.
	EventStored EventType = "stored"
	// EventFailed indicates processing ended with an error and no report.
	EventFailed EventType = "failed"
)

// Event represents an event emitted by the orchestrator.
// These events are used to update the TUI and track progress.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// Objective is the objective being processed.
	Objective string
	// ReportID is the report key, once known.
	ReportID string
	// Engine is the selected engine, once known.
	Engine models.EngineKind
	// TaskID is the related task id for task events.
	TaskID int
	// TaskTitle is the related task title for task events.
	TaskTitle string
	// Message provides additional context about the event.
	Message string
	// Error contains error details for failure events.
	Error error
	// Status is the report status for report events.
	Status models.ReportStatus
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
