// Package engine provides the two interchangeable objective-execution
// strategies and the audit wrapper that records every agentic run.
package engine

import (
	"context"
)

// Result is the uniform outcome of an engine run.
type Result struct {
	Steps    []string `json:"steps"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
	// Output is engine specific: *StandardRun or []models.IntentResult.
	Output any `json:"output,omitempty"`
}

// OK reports whether the run recorded no errors.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// Engine runs a goal with caller-supplied context values.
type Engine interface {
	Run(ctx context.Context, goal string, input map[string]any) (Result, error)
}

// Func adapts a function to an Engine.
type Func func(ctx context.Context, goal string, input map[string]any) (Result, error)

// Run implements Engine.
func (f Func) Run(ctx context.Context, goal string, input map[string]any) (Result, error) {
	return f(ctx, goal, input)
}
