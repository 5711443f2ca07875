package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/ormasoftchile/tseq/pkg/engine"
)

// Markdown builds a markdown report of a trace.
func Markdown(tr *engine.Trace) string {
	var b strings.Builder
	status := "passed"
	if !tr.OK() {
		status = "failed"
	}
	fmt.Fprintf(&b, "# Run %s\n\n", tr.RunID)
	fmt.Fprintf(&b, "**Status:** %s  \n**Started:** %s  \n**Duration:** %s\n\n",
		status, tr.Started.Format("2006-01-02 15:04:05"), tr.Duration.Round(time.Millisecond))
	b.WriteString("| # | Step | Result | Message |\n|---|---|---|---|\n")
	for _, r := range tr.Results {
		fmt.Fprintf(&b, "| %d | `%s` | %s %s | %s |\n",
			r.Index+1, r.Label, Glyph(r.Kind), r.Kind, escapeCell(r.Message))
	}
	b.WriteString("\n")
	counts := tr.Counts()
	for _, k := range engine.Kinds {
		if n := counts[k]; n > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", k, n)
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}

// RenderMarkdown converts markdown to styled terminal output, falling back to
// the raw input if glamour fails.
func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// JSON writes the trace as indented JSON.
func JSON(w io.Writer, tr *engine.Trace) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tr)
}

// Report writes tr in the named format: text, md (markdown) or json.
func Report(w io.Writer, tr *engine.Trace, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		Log(w, tr)
	case "md", "markdown":
		fmt.Fprintln(w, RenderMarkdown(Markdown(tr)))
	case "json":
		return JSON(w, tr)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
	return nil
}
