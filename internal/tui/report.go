package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/codi/pkg/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)
	partialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("236")).
			Padding(0, 1)
)

// StatusStyle returns the style used for a report status.
func StatusStyle(s models.ReportStatus) lipgloss.Style {
	switch s {
	case models.ReportSuccess:
		return successStyle
	case models.ReportPartial:
		return partialStyle
	default:
		return failedStyle
	}
}

// RenderReport renders a report as a bordered summary block.
func RenderReport(r *models.Report, width int) string {
	if r == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Report "+r.ID) + "\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("objective:"), r.Objective)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("engine:   "), r.Engine)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("status:   "), StatusStyle(r.Status).Render(string(r.Status)))
	fmt.Fprintf(&b, "%s %d/%d succeeded (%.0f%%) in %.2fs\n",
		labelStyle.Render("tasks:    "),
		r.Summary.SuccessfulTasks, r.Summary.TotalTasks, r.Summary.SuccessRate, r.DurationSeconds)

	if len(r.ExecutionResults) > 0 {
		b.WriteString("\n")
		for _, res := range r.ExecutionResults {
			b.WriteString(resultLine(res) + "\n")
		}
	}
	if r.Agentic != nil {
		for _, s := range r.Agentic.Steps {
			b.WriteString(labelStyle.Render("  step ") + s + "\n")
		}
		for _, w := range r.Agentic.Warnings {
			b.WriteString(partialStyle.Render("  warn ") + w + "\n")
		}
	}
	for _, e := range r.Summary.Errors {
		b.WriteString(failedStyle.Render("  error ") + e + "\n")
	}

	style := boxStyle
	if width > 4 {
		style = style.Width(width - 4)
	}
	return style.Render(strings.TrimRight(b.String(), "\n"))
}

func resultLine(res models.ExecutionResult) string {
	if res.OK() {
		return fmt.Sprintf("  %s %d. %s", successStyle.Render("✓"), res.TaskID, res.TaskTitle)
	}
	return fmt.Sprintf("  %s %d. %s: %s", failedStyle.Render("✗"), res.TaskID, res.TaskTitle, res.Error)
}
