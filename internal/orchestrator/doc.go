// Package orchestrator coordinates the processing of one objective.
//
// Each call to ProcessObjective moves through a fixed set of states:
//
//	received -> engine_selected -> executing -> report_assembled -> stored
//
// The decision gate picks the engine. The standard engine decomposes the
// objective into a dependency-ordered plan and runs it fail-fast; the
// agentic engine asks a reasoner for intents and runs them failure-isolated.
// Either way the outcome is reduced to a models.Report, stored once and
// served unchanged afterwards.
//
// Example usage:
//
//	orch, err := orchestrator.New(orchestrator.RequiredConfig{Standard: std},
//		orchestrator.WithAgentic(audited, switchFlags))
//	report, err := orch.ProcessObjective(ctx, orchestrator.Request{
//		Objective: "Create a file called notes.txt with the text hello",
//	})
package orchestrator
