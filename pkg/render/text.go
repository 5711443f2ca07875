package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/tseq/pkg/engine"
	"github.com/ormasoftchile/tseq/pkg/registry"
	"github.com/ormasoftchile/tseq/pkg/sequence"
)

// Pad right-pads s with spaces to width terminal cells.
func Pad(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// ResultLine formats one step result: "  3. ✓ test_math.add_positive  success".
func ResultLine(r engine.StepResult, labelWidth int) string {
	style := KindStyle(r.Kind)
	line := fmt.Sprintf("%3d. %s %s  %s",
		r.Index+1,
		style.Render(Glyph(r.Kind)),
		Pad(r.Label, labelWidth),
		style.Render(string(r.Kind)))
	if r.Message != "" && r.Kind != engine.KindControlMarker {
		line += "  " + DimStyle.Render(r.Message)
	}
	return line
}

// Log writes the execution log of a trace followed by a one-line tally.
func Log(w io.Writer, tr *engine.Trace) {
	width := 0
	for _, r := range tr.Results {
		width = max(width, runewidth.StringWidth(r.Label))
	}
	fmt.Fprintln(w, HeaderStyle.Render("Run "+tr.RunID))
	if tr.Len() == 0 {
		fmt.Fprintln(w, DimStyle.Render("  (empty sequence)"))
	}
	for _, r := range tr.Results {
		LogResult(w, r, width)
	}
	fmt.Fprintln(w, Tally(tr))
}

// LogResult writes one result line and the output the step produced.
func LogResult(w io.Writer, r engine.StepResult, labelWidth int) {
	fmt.Fprintln(w, ResultLine(r, labelWidth))
	if r.Output == "" {
		return
	}
	for _, l := range strings.Split(r.Output, "\n") {
		fmt.Fprintln(w, DimStyle.Render("       │ "+l))
	}
}

// LabelWidth is the display width of the longest step label in seq.
func LabelWidth(seq *sequence.Sequence) int {
	width := 0
	for _, st := range seq.Steps() {
		width = max(width, runewidth.StringWidth(st.Label()))
	}
	return width
}

// Tally summarises a trace: "4 steps: 2 success, 1 failure, 1 control_marker (12ms)".
func Tally(tr *engine.Trace) string {
	counts := tr.Counts()
	var parts []string
	for _, k := range engine.Kinds {
		if n := counts[k]; n > 0 {
			parts = append(parts, KindStyle(k).Render(fmt.Sprintf("%d %s", n, k)))
		}
	}
	s := fmt.Sprintf("%d steps", tr.Len())
	if len(parts) > 0 {
		s += ": " + strings.Join(parts, ", ")
	}
	return s + DimStyle.Render(fmt.Sprintf(" (%s)", tr.Duration.Round(time.Millisecond)))
}

// Summary writes the numbered step list of a sequence.
func Summary(w io.Writer, seq *sequence.Sequence) {
	lines := seq.RenderSummary()
	if len(lines) == 0 {
		fmt.Fprintln(w, DimStyle.Render("(empty sequence)"))
		return
	}
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

// Params writes the visible parameters of a function step with their types.
func Params(w io.Writer, step *sequence.FunctionStep, entry *registry.FunctionEntry) {
	if entry == nil {
		fmt.Fprintln(w, ErrorStyle.Render(step.Label()+" not found"))
		return
	}
	vis := step.VisibleParams(entry.Signature)
	if len(vis) == 0 {
		fmt.Fprintln(w, DimStyle.Render("(no parameters)"))
		return
	}
	width := 0
	for _, p := range vis {
		width = max(width, runewidth.StringWidth(p.Name))
	}
	for _, p := range vis {
		fmt.Fprintf(w, "  %s %s = %q\n", Pad(p.Name, width), DimStyle.Render(Pad(string(p.Type), 7)), p.Value)
	}
}

// Catalog writes every module and function with its signature, then any
// load diagnostics.
func Catalog(w io.Writer, reg *registry.Registry, diags []registry.Diagnostic) {
	entries := reg.Entries()
	width := 0
	for _, e := range entries {
		width = max(width, runewidth.StringWidth(e.Name))
	}
	module := ""
	for _, e := range entries {
		if e.Module != module {
			module = e.Module
			fmt.Fprintln(w, HeaderStyle.Render(module))
		}
		fmt.Fprintf(w, "  %s %s\n", Pad(e.Name, width), DimStyle.Render(e.Signature.String()))
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, DimStyle.Render("(no test functions found)"))
	}
	for _, d := range diags {
		fmt.Fprintln(w, ErrorStyle.Render(GlyphFailed+" "+d.Error()))
	}
}
