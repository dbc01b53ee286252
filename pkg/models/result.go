package models

import "time"

// ResultStatus is the outcome of a single intent or task execution.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultError   ResultStatus = "error"
)

// ErrorKind classifies a failed intent.
type ErrorKind string

const (
	// ErrorKindValidation marks an intent rejected before any capability ran.
	ErrorKindValidation ErrorKind = "VALIDATION_ERROR"
	// ErrorKindRuntime marks a capability failure or timeout.
	ErrorKindRuntime ErrorKind = "RUNTIME_ERROR"
	// ErrorKindCancelled marks an intent that was never started because the
	// caller cancelled the batch.
	ErrorKindCancelled ErrorKind = "CANCELLED"
)

// IntentResult is the record produced for one intent of a batch.
type IntentResult struct {
	// ActionType is the action kind, or the raw intent name when the intent
	// could not be built.
	ActionType string `json:"action"`
	// Status is success or error.
	Status ResultStatus `json:"status"`
	// Result is the capability output on success.
	Result any `json:"result,omitempty"`
	// Error is the failure message.
	Error string `json:"error,omitempty"`
	// ErrorKind is set on failure only.
	ErrorKind ErrorKind `json:"type,omitempty"`
}

// OK reports whether the intent succeeded.
func (r IntentResult) OK() bool { return r.Status == ResultSuccess }

// ExecutionResult is the record produced for one plan task.
type ExecutionResult struct {
	TaskID          int        `json:"task_id"`
	TaskTitle       string     `json:"task_title"`
	Status          TaskStatus `json:"status"`
	Result          any        `json:"result,omitempty"`
	Error           string     `json:"error,omitempty"`
	DurationSeconds float64    `json:"duration_seconds"`
	Timestamp       time.Time  `json:"timestamp"`
}

// OK reports whether the task succeeded.
func (r ExecutionResult) OK() bool { return r.Status == TaskStatusSuccess }
