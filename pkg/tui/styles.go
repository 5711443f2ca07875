// Package tui implements the terminal UI for composing and running
// sequences: a catalog pane, a sequence pane and a parameter editor.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ormasoftchile/tseq/pkg/render"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(render.ColorCyan).
			Padding(0, 1)

	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(render.ColorDim).
			Padding(0, 1)

	panelFocused = panelBorder.
			BorderForeground(render.ColorCyan)

	panelTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(render.ColorCyan)

	moduleStyle = lipgloss.NewStyle().
			Foreground(render.ColorBlue).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(render.ColorYellow)

	statusStyle = lipgloss.NewStyle().
			Foreground(render.ColorDim)
)
