// Package render formats catalogs, sequences and run traces for terminals
// and reports.
package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ormasoftchile/tseq/pkg/engine"
)

// Step outcome glyphs convey meaning without relying on color alone.
const (
	GlyphPending  = "○"
	GlyphPassed   = "✓"
	GlyphFailed   = "✗"
	GlyphMissing  = "?"
	GlyphArgument = "!"
	GlyphControl  = "◆"
)

// Palette adapts to terminal capabilities via lipgloss.
var (
	ColorGreen  = lipgloss.Color("42")
	ColorRed    = lipgloss.Color("196")
	ColorYellow = lipgloss.Color("214")
	ColorBlue   = lipgloss.Color("39")
	ColorCyan   = lipgloss.Color("51")
	ColorDim    = lipgloss.Color("240")
)

var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorCyan)
	DimStyle    = lipgloss.NewStyle().Foreground(ColorDim)
	ErrorStyle  = lipgloss.NewStyle().Foreground(ColorRed)

	kindStyles = map[engine.Kind]lipgloss.Style{
		engine.KindSuccess:       lipgloss.NewStyle().Foreground(ColorGreen),
		engine.KindFailure:       lipgloss.NewStyle().Foreground(ColorRed),
		engine.KindNotFound:      lipgloss.NewStyle().Foreground(ColorYellow),
		engine.KindArgumentError: lipgloss.NewStyle().Foreground(ColorYellow),
		engine.KindControlMarker: lipgloss.NewStyle().Foreground(ColorBlue).Bold(true),
	}
)

// Glyph returns the glyph for a result kind.
func Glyph(k engine.Kind) string {
	switch k {
	case engine.KindSuccess:
		return GlyphPassed
	case engine.KindFailure:
		return GlyphFailed
	case engine.KindNotFound:
		return GlyphMissing
	case engine.KindArgumentError:
		return GlyphArgument
	case engine.KindControlMarker:
		return GlyphControl
	}
	return GlyphPending
}

// KindStyle returns the style used for a result kind.
func KindStyle(k engine.Kind) lipgloss.Style {
	if s, ok := kindStyles[k]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
