// Package repl implements the interactive sequence composer.
package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"github.com/ormasoftchile/tseq/pkg/engine"
	"github.com/ormasoftchile/tseq/pkg/logging"
	"github.com/ormasoftchile/tseq/pkg/registry"
	"github.com/ormasoftchile/tseq/pkg/sequence"
	"github.com/ormasoftchile/tseq/pkg/trace"
)

// REPL composes a sequence from typed commands and runs it on demand.
type REPL struct {
	load   registry.Loader
	reg    *registry.Registry
	diags  []registry.Diagnostic
	seq    *sequence.Sequence
	output io.Writer
	rl     *readline.Instance
	trace  *trace.Writer
	logger zerolog.Logger
}

// New loads the registry once and returns a REPL with an empty sequence.
// Run output and traces go to tw when it is not nil.
func New(ctx context.Context, load registry.Loader, tw *trace.Writer) *REPL {
	r := &REPL{
		load:   load,
		seq:    sequence.New(),
		output: os.Stdout,
		trace:  tw,
		logger: logging.FromContext(ctx, "repl"),
	}
	r.reg, r.diags = load(ctx)
	return r
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.output, "tseq: %d test functions in %d modules\n", r.reg.Len(), len(r.reg.Modules()))
	r.printDiagnostics()
	fmt.Fprintf(r.output, "Type 'help' for available commands, 'catalog' to list test functions.\n\n")
}

// Sequence returns the sequence being composed.
func (r *REPL) Sequence() *sequence.Sequence { return r.seq }

// Run starts the interactive loop. It returns nil on quit, Ctrl-C or EOF.
func (r *REPL) Run(ctx context.Context) error {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("add", readline.PcItemDynamic(r.labels)),
		readline.PcItem("catalog"),
		readline.PcItem("if"),
		readline.PcItem("for"),
		readline.PcItem("end"),
		readline.PcItem("list"),
		readline.PcItem("params"),
		readline.PcItem("set"),
		readline.PcItem("rm"),
		readline.PcItem("mv"),
		readline.PcItem("run"),
		readline.PcItem("clear"),
		readline.PcItem("reload"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.buildPrompt(),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	r.rl = rl
	r.output = rl.Stdout()
	defer rl.Close()

	r.printBanner()

	for {
		rl.SetPrompt(r.buildPrompt())
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}
		if r.Exec(ctx, line) {
			return nil
		}
	}
}

// Exec runs one command line and reports whether the user asked to quit.
func (r *REPL) Exec(ctx context.Context, line string) (quit bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	switch cmd := strings.ToLower(parts[0]); cmd {
	case "catalog", "ls":
		r.handleCatalog()
	case "add", "a":
		r.handleAdd(parts)
	case "if", "for", "end":
		r.handleControl(cmd)
	case "list", "l":
		r.handleList()
	case "params", "p":
		r.handleParams(parts)
	case "set", "s":
		r.handleSet(line)
	case "rm":
		r.handleRemove(parts)
	case "mv":
		r.handleMove(parts)
	case "run", "r":
		r.handleRun(ctx)
	case "clear":
		r.seq.Clear()
		fmt.Fprintf(r.output, "Sequence cleared.\n")
	case "reload":
		r.handleReload(ctx)
	case "help", "?":
		r.handleHelp()
	case "quit", "q", "exit":
		fmt.Fprintf(r.output, "Bye.\n")
		return true
	default:
		fmt.Fprintf(r.output, "Unknown command: %q. Type 'help' for available commands.\n", parts[0])
	}
	return false
}

// buildPrompt creates the prompt string: tseq[3 steps]>
func (r *REPL) buildPrompt() string {
	return fmt.Sprintf("tseq[%d steps]> ", r.seq.Len())
}

func (r *REPL) labels(string) []string {
	entries := r.reg.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Label()
	}
	return out
}

func (r *REPL) newEngine(runID string, observe engine.Observer) *engine.Engine {
	return engine.New(r.reg, engine.RunConfig{
		RunID:    runID,
		Trace:    r.trace,
		Observer: observe,
		Logger:   &r.logger,
	})
}
