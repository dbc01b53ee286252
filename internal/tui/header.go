package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Header renders the codi title bar.
type Header struct {
	width int
}

// NewHeader creates a new Header.
func NewHeader() *Header {
	return &Header{
		width: 80,
	}
}

// SetWidth sets the header width.
func (h *Header) SetWidth(width int) {
	h.width = width
}

// View renders the header.
func (h *Header) View() string {
	colors := []string{"#FF8E53", "#FFC857", "#4ECDC4", "#45B7D1"}

	logo := []string{
		"  ██████╗ ██████╗ ██████╗ ██╗",
		" ██╔════╝██╔═══██╗██╔══██╗██║",
		" ██║     ██║   ██║██║  ██║██║",
		" ╚██████╗╚██████╔╝██████╔╝██║",
	}

	var styledLines []string
	for i, line := range logo {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(colors[i%len(colors)])).Bold(true)
		styledLines = append(styledLines, style.Render(line))
	}
	logoBlock := lipgloss.JoinVertical(lipgloss.Left, styledLines...)

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Italic(true).
		Render("Objective Orchestrator")

	return lipgloss.NewStyle().
		Width(h.width).
		Align(lipgloss.Center).
		MarginTop(1).
		PaddingBottom(1).
		Render(lipgloss.JoinVertical(lipgloss.Center, logoBlock, subtitle))
}

// Height returns the header height in lines.
func (h *Header) Height() int {
	return 7 // 1 margin + 4 logo lines + 1 subtitle + 1 padding
}
