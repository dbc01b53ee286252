package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/codi/pkg/models"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validFormat(f string) error {
	switch f {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("invalid format %q: must be text, json, or yaml", f)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// printStatus prints a status line with color
func printStatus(w io.Writer, symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Fprintf(w, "%s %s\n", c.Sprint(symbol), message)
}

func statusColor(s models.ReportStatus) color.Attribute {
	switch s {
	case models.ReportSuccess:
		return color.FgGreen
	case models.ReportPartial:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

// writeValue encodes v in the requested structured format.
func writeValue(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		data, err := toYAML(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("format %q is not structured", format)
	}
}

// toYAML renders v as YAML using its JSON field names.
func toYAML(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return yaml.Marshal(generic)
}

// writeReport prints a report in format.
func writeReport(w io.Writer, format string, r *models.Report) error {
	if format != formatText {
		return writeValue(w, format, r)
	}

	bold := color.New(color.Bold)
	bold.Fprintf(w, "Report %s\n", r.ID)
	fmt.Fprintf(w, "  Objective: %s\n", r.Objective)
	fmt.Fprintf(w, "  Engine:    %s\n", r.Engine)
	fmt.Fprintf(w, "  Status:    %s\n", color.New(statusColor(r.Status)).Sprint(r.Status))
	fmt.Fprintf(w, "  Tasks:     %d/%d succeeded (%.0f%%)\n",
		r.Summary.SuccessfulTasks, r.Summary.TotalTasks, r.Summary.SuccessRate)
	fmt.Fprintf(w, "  Duration:  %.2fs\n", r.DurationSeconds)

	if len(r.ExecutionResults) > 0 {
		fmt.Fprintln(w)
		for _, res := range r.ExecutionResults {
			if res.OK() {
				printStatus(w, "  ✓", fmt.Sprintf("%d. %s", res.TaskID, res.TaskTitle), color.FgGreen)
				continue
			}
			printStatus(w, "  ✗", fmt.Sprintf("%d. %s: %s", res.TaskID, res.TaskTitle, res.Error), color.FgRed)
		}
	}
	if r.Agentic != nil {
		if len(r.Agentic.Steps) > 0 {
			fmt.Fprintln(w)
		}
		for _, s := range r.Agentic.Steps {
			fmt.Fprintf(w, "  %s\n", s)
		}
		for _, warn := range r.Agentic.Warnings {
			printStatus(w, "  ⚠", warn, color.FgYellow)
		}
	}
	if len(r.Summary.Errors) > 0 {
		fmt.Fprintln(w)
		for _, e := range r.Summary.Errors {
			printStatus(w, "  ✗", e, color.FgRed)
		}
	}
	return nil
}

// writeReportList prints one line per report.
func writeReportList(w io.Writer, format string, reports []*models.Report) error {
	if format != formatText {
		type row struct {
			ID        string              `json:"id"`
			Status    models.ReportStatus `json:"status"`
			Engine    models.EngineKind   `json:"engine"`
			CreatedAt string              `json:"created_at"`
			Objective string              `json:"objective"`
		}
		rows := make([]row, 0, len(reports))
		for _, r := range reports {
			rows = append(rows, row{r.ID, r.Status, r.Engine, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Objective})
		}
		return writeValue(w, format, rows)
	}

	if len(reports) == 0 {
		fmt.Fprintln(w, "No reports")
		return nil
	}
	for _, r := range reports {
		fmt.Fprintf(w, "%-40s %-8s %-8s %s  %s\n",
			r.ID,
			color.New(statusColor(r.Status)).Sprint(r.Status),
			r.Engine,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			truncate(r.Objective, 60),
		)
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
