package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/codi/internal/audit"
	"github.com/ShayCichocki/codi/internal/orchestrator"
	"github.com/ShayCichocki/codi/pkg/models"
)

var (
	reportsFormat string
	reportsPurge  time.Duration
	reportFormat  string
	reportAudit   bool
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List stored reports",
	Long: `List stored reports, oldest first.

Use --purge to delete reports older than a duration (e.g. --purge 720h).`,
	Args: cobra.NoArgs,
	RunE: listReports,
}

var reportCmd = &cobra.Command{
	Use:   "report [id]",
	Short: "Show a stored report",
	Long: `Show a stored report. Without an id, the most recent report is shown.

With --audit, the audit records of an agentic run are printed instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: showReport,
}

func init() {
	reportsCmd.Flags().StringVarP(&reportsFormat, "format", "f", formatText, "Output format: text, json, or yaml")
	reportsCmd.Flags().DurationVar(&reportsPurge, "purge", 0, "Delete reports older than this duration")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", formatText, "Output format: text, json, or yaml")
	reportCmd.Flags().BoolVar(&reportAudit, "audit", false, "Show the audit records of the run")
}

func listReports(cmd *cobra.Command, args []string) error {
	if err := validFormat(reportsFormat); err != nil {
		return err
	}
	return withApp(appOptions{}, func(ctx context.Context, a *app) error {
		out := cmd.OutOrStdout()
		if reportsPurge > 0 {
			n, err := a.db.PurgeOldReports(reportsPurge)
			if err != nil {
				return fmt.Errorf("purge reports: %w", err)
			}
			fmt.Fprintf(out, "Purged %d report(s) older than %s\n", n, reportsPurge)
		}
		reports, err := a.db.ListReports(ctx)
		if err != nil {
			return fmt.Errorf("list reports: %w", err)
		}
		return writeReportList(out, reportsFormat, reports)
	})
}

func showReport(cmd *cobra.Command, args []string) error {
	if err := validFormat(reportFormat); err != nil {
		return err
	}
	return withApp(appOptions{orchestrator: true}, func(ctx context.Context, a *app) error {
		out := cmd.OutOrStdout()

		var (
			report *models.Report
			err    error
		)
		if len(args) == 0 {
			report, err = a.orch.LastReport()
		} else {
			report, err = a.orch.GetReport(args[0])
		}
		if errors.Is(err, orchestrator.ErrReportNotFound) {
			return fmt.Errorf("%w (see 'codi reports')", err)
		}
		if err != nil {
			return err
		}

		if reportAudit {
			records, err := a.db.ListAuditRecords(ctx, report.ID)
			if err != nil {
				return fmt.Errorf("list audit records: %w", err)
			}
			return writeAuditRecords(out, reportFormat, records)
		}

		if reportFormat == formatJSON {
			data, err := a.orch.ExportReportJSON(report.ID)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		}
		return writeReport(out, reportFormat, report)
	})
}

func writeAuditRecords(w io.Writer, format string, records []audit.Record) error {
	if format != formatText {
		return writeValue(w, format, records)
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No audit records")
		return nil
	}
	for _, rec := range records {
		fmt.Fprintf(w, "%s  %s\n", rec.Timestamp.Format("2006-01-02 15:04:05"), rec.ExecutionID)
		fmt.Fprintf(w, "  goal: %s\n", rec.Goal)
		for _, s := range rec.Steps {
			fmt.Fprintf(w, "  step: %s\n", s)
		}
		for _, warn := range rec.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warn)
		}
		for _, e := range rec.Errors {
			fmt.Fprintf(w, "  error: %s\n", e)
		}
	}
	return nil
}
