package repl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ormasoftchile/tseq/pkg/engine"
	"github.com/ormasoftchile/tseq/pkg/plan"
	"github.com/ormasoftchile/tseq/pkg/render"
	"github.com/ormasoftchile/tseq/pkg/sequence"
)

// handleCatalog lists every registered function.
func (r *REPL) handleCatalog() {
	render.Catalog(r.output, r.reg, r.diags)
}

// handleAdd appends a call step: add module.function
func (r *REPL) handleAdd(parts []string) {
	if len(parts) != 2 {
		fmt.Fprintf(r.output, "Usage: add <module.function>\n")
		return
	}
	module, function, err := plan.SplitCall(parts[1])
	if err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
		return
	}
	if _, ok := r.reg.Lookup(module, function); !ok {
		fmt.Fprintf(r.output, "Warning: %s is not in the catalog; it will be recorded as not found.\n", parts[1])
	}
	r.seq.Drop(sequence.FunctionRef{Function: function, Module: module})
	fmt.Fprintf(r.output, "  %d. %s\n", r.seq.Len(), parts[1])
}

// handleControl appends an if/for/end marker.
func (r *REPL) handleControl(token string) {
	if _, ok := r.seq.Drop(token); ok {
		fmt.Fprintf(r.output, "  %d. %s\n", r.seq.Len(), token)
	}
}

// handleList prints the numbered sequence.
func (r *REPL) handleList() {
	render.Summary(r.output, r.seq)
}

// handleParams shows the parameters of step n: params <n>
func (r *REPL) handleParams(parts []string) {
	if len(parts) != 2 {
		fmt.Fprintf(r.output, "Usage: params <n>\n")
		return
	}
	fs, ok := r.functionStep(parts[1])
	if !ok {
		return
	}
	entry, _ := r.reg.Lookup(fs.Module(), fs.Function())
	fmt.Fprintf(r.output, "%s\n", fs.Label())
	render.Params(r.output, fs, entry)
}

// handleSet stores raw text for a parameter: set <n> <name> <value...>
// The value is the rest of the line and may contain spaces or be empty.
func (r *REPL) handleSet(line string) {
	fields, value := splitFields(line, 3)
	if len(fields) < 3 {
		fmt.Fprintf(r.output, "Usage: set <n> <name> <value>\n")
		return
	}
	fs, ok := r.functionStep(fields[1])
	if !ok {
		return
	}
	fs.SetParam(fields[2], value)
	fmt.Fprintf(r.output, "  %s %s = %q\n", fs.Label(), fields[2], value)
}

// splitFields returns the first n whitespace-separated fields of line and
// whatever follows the single separator after them.
func splitFields(line string, n int) ([]string, string) {
	var fields []string
	rest := line
	for len(fields) < n {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			break
		}
		end := strings.IndexAny(rest, " \t")
		if end < 0 {
			fields = append(fields, rest)
			return fields, ""
		}
		fields = append(fields, rest[:end])
		rest = rest[end+1:]
	}
	return fields, rest
}

// handleRemove deletes step n: rm <n>
func (r *REPL) handleRemove(parts []string) {
	if len(parts) != 2 {
		fmt.Fprintf(r.output, "Usage: rm <n>\n")
		return
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		fmt.Fprintf(r.output, "Error: step number %q: %v\n", parts[1], err)
		return
	}
	removed, err := r.seq.RemoveAt(n - 1)
	if err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(r.output, "Removed %s.\n", removed.Label())
}

// handleMove relocates a step: mv <from> <to>
func (r *REPL) handleMove(parts []string) {
	if len(parts) != 3 {
		fmt.Fprintf(r.output, "Usage: mv <from> <to>\n")
		return
	}
	from, err1 := strconv.Atoi(parts[1])
	to, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		fmt.Fprintf(r.output, "Error: step numbers must be integers\n")
		return
	}
	if err := r.seq.Move(from-1, to-1); err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
		return
	}
	render.Summary(r.output, r.seq)
}

// handleRun executes the sequence, printing each result as soon as its step finishes.
func (r *REPL) handleRun(ctx context.Context) {
	runID := uuid.NewString()
	width := render.LabelWidth(r.seq)
	fmt.Fprintln(r.output, render.HeaderStyle.Render("Run "+runID))
	if r.seq.Len() == 0 {
		fmt.Fprintln(r.output, render.DimStyle.Render("  (empty sequence)"))
	}
	tr := r.newEngine(runID, func(res engine.StepResult) {
		render.LogResult(r.output, res, width)
	}).Run(ctx, r.seq)
	fmt.Fprintln(r.output, render.Tally(tr))
}

// handleReload rebuilds the registry. Steps keep their parameter values.
func (r *REPL) handleReload(ctx context.Context) {
	r.reg, r.diags = r.load(ctx)
	fmt.Fprintf(r.output, "Reloaded: %d test functions in %d modules.\n", r.reg.Len(), len(r.reg.Modules()))
	r.printDiagnostics()
}

func (r *REPL) printDiagnostics() {
	for _, d := range r.diags {
		fmt.Fprintf(r.output, "  %s %v\n", render.GlyphFailed, d)
	}
}

// functionStep resolves a 1-based step number to a call step.
func (r *REPL) functionStep(arg string) (*sequence.FunctionStep, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintf(r.output, "Error: step number %q: %v\n", arg, err)
		return nil, false
	}
	st, err := r.seq.At(n - 1)
	if err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
		return nil, false
	}
	fs, ok := st.(*sequence.FunctionStep)
	if !ok {
		fmt.Fprintf(r.output, "Error: step %d is a %s marker and has no parameters\n", n, st.Label())
		return nil, false
	}
	return fs, true
}

// handleHelp displays available commands.
func (r *REPL) handleHelp() {
	fmt.Fprintf(r.output, `Commands:
  catalog, ls              List test functions and load errors
  add, a <module.fn>       Append a call step
  if | for | end           Append a control marker
  list, l                  Show the sequence
  params, p <n>            Show the parameters of step n
  set, s <n> <name> <text> Set a parameter of step n (rest of line)
  rm <n>                   Remove step n
  mv <from> <to>           Move a step
  run, r                   Execute the sequence
  clear                    Remove every step
  reload                   Reload test function sources
  help, ?                  Show this help
  quit, q                  Exit
`)
}
