package main

import (
	"context"
	"fmt"
	"io"
	"os/user"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/codi/internal/gate"
	"github.com/ShayCichocki/codi/internal/orchestrator"
	"github.com/ShayCichocki/codi/internal/tui"
	"github.com/ShayCichocki/codi/pkg/models"
)

var (
	runAttachments  []string
	runAllowAgentic bool
	runForceAgentic bool
	runTUI          bool
	runFormat       string
)

var runCmd = &cobra.Command{
	Use:   "run <objective>",
	Short: "Process an objective",
	Long: `Process a natural-language objective and print its report.

The decision gate picks the engine:
  - standard: the objective is decomposed into keyword-driven tasks and each
    task is executed in order, stopping at the first failure
  - agentic:  the reasoning backend proposes intents which are all executed
    and recorded in the audit log

The agentic engine is only used when agentic.enabled is set, the kill file is
absent, and the caller is allowed (--allow-agentic). Objectives that look
multi-step use it automatically; --force-agentic uses it for any objective.

Examples:
  codi run "create notes.txt with the text hello"
  codi run --allow-agentic "create a.txt with the text hi and then analyze a.txt"
  codi run --allow-agentic --attach bundle.zip "inspect the attached ZIP"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runObjective,
}

func init() {
	runCmd.Flags().StringSliceVar(&runAttachments, "attach", nil, "Workspace file handed to the agentic engine (repeatable)")
	runCmd.Flags().BoolVar(&runAllowAgentic, "allow-agentic", false, "Grant this caller permission to use the agentic engine")
	runCmd.Flags().BoolVar(&runForceAgentic, "force-agentic", false, "Use the agentic engine regardless of the objective shape")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Follow progress in a terminal UI")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", formatText, "Output format: text, json, or yaml")
}

func runObjective(cmd *cobra.Command, args []string) error {
	if err := validFormat(runFormat); err != nil {
		return err
	}
	if runForceAgentic && !runAllowAgentic {
		return fmt.Errorf("--force-agentic requires --allow-agentic")
	}

	req := orchestrator.Request{
		Objective:    strings.Join(args, " "),
		Caller:       currentCaller(runAllowAgentic),
		Attachments:  runAttachments,
		ForceAgentic: runForceAgentic,
	}

	opts := appOptions{orchestrator: true, events: runTUI}
	if runTUI {
		// Log lines corrupt the alternate screen; the log file still receives them.
		opts.logOutput = io.Discard
	}

	return withApp(opts, func(ctx context.Context, a *app) error {
		var (
			report *models.Report
			err    error
		)
		if runTUI {
			report, err = runWithTUI(ctx, a, req)
		} else {
			report, err = a.orch.ProcessObjective(ctx, req)
		}
		if err != nil {
			return err
		}
		if err := writeReport(cmd.OutOrStdout(), runFormat, report); err != nil {
			return err
		}
		if report.Status != models.ReportSuccess {
			return fmt.Errorf("objective %s", report.Status)
		}
		return nil
	})
}

// runWithTUI processes req while the TUI follows orchestrator events. It
// returns once the user quits the TUI.
func runWithTUI(ctx context.Context, a *app, req orchestrator.Request) (*models.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program, view := tui.NewProgram(req.Objective)
	go tui.Forward(program, a.events.Events())

	processed := make(chan struct{})
	go func() {
		defer close(processed)
		report, err := a.orch.ProcessObjective(ctx, req)
		program.Send(tui.DoneMsg{Report: report, Err: err})
	}()

	_, runErr := program.Run()
	// Quitting early cancels the run; wait so storage is not closed under it.
	cancel()
	<-processed
	if runErr != nil {
		return nil, fmt.Errorf("run TUI: %w", runErr)
	}
	report, err := view.Report()
	if report == nil && err == nil {
		return nil, fmt.Errorf("interrupted before the objective finished")
	}
	return report, err
}

// currentCaller identifies the local user.
func currentCaller(allowAgentic bool) gate.Caller {
	id := "cli"
	if u, err := user.Current(); err == nil && u.Username != "" {
		id = u.Username
	}
	return gate.Caller{
		ID:           id,
		Capabilities: map[string]bool{gate.CapabilityAgentic: allowAgentic},
	}
}
