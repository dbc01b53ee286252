// Package tui provides the terminal view for `codi run --tui`.
//
// The view is read-only. It follows one objective from submission to the
// stored report: the selected engine, each task or intent as it completes,
// and finally the report summary. Users can only quit with 'q' or Ctrl+C.
//
// Usage:
//
//	program, app := tui.NewProgram(objective)
//	go tui.Forward(program, orch.Events())
//
//	go func() {
//	    report, err := orch.ProcessObjective(ctx, req)
//	    program.Send(tui.DoneMsg{Report: report, Err: err})
//	}()
//
//	_, err := program.Run()
package tui
