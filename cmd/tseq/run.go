package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ormasoftchile/tseq/pkg/engine"
	"github.com/ormasoftchile/tseq/pkg/logging"
	"github.com/ormasoftchile/tseq/pkg/plan"
	"github.com/ormasoftchile/tseq/pkg/registry"
	"github.com/ormasoftchile/tseq/pkg/render"
	"github.com/ormasoftchile/tseq/pkg/trace"
)

var errRunFailed = errors.New("sequence failed")

var runPlan string

var runCmd = &cobra.Command{
	Use:   "run [step...]",
	Short: "Run a sequence given as arguments or as a plan file",
	Long: `Run a sequence and report one result per step.

Steps are "if", "for", "end" or module.function with optional parameters:

  tseq run test_math.add_positive:a=2,b=3 for test_math.under_limit:n=4 end
  tseq run --plan smoke.yaml --report md

The exit status is non-zero when any step failed, was not found or had bad
arguments.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	p, err := buildPlan(runPlan, args, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	seq, err := p.Sequence()
	if err != nil {
		return err
	}

	reg, diags := newLoader()(cmd.Context())
	for _, d := range diags {
		fmt.Fprintln(cmd.ErrOrStderr(), render.ErrorStyle.Render("⚠ "+d.Error()))
	}
	for _, w := range plan.Unresolved(p, known(reg)) {
		fmt.Fprintf(cmd.ErrOrStderr(), "  ⚠ %s\n", w.Message)
	}

	runID := uuid.NewString()
	tw, err := openTrace(cfg.Trace.File, runID)
	if err != nil {
		return err
	}
	if tw != nil {
		defer tw.Close()
	}

	logger := logging.Component("run")
	tr := engine.New(reg, engine.RunConfig{RunID: runID, Trace: tw, Logger: &logger}).Run(cmd.Context(), seq)
	if err := render.Report(cmd.OutOrStdout(), tr, cfg.Report.Format); err != nil {
		return err
	}
	if !tr.OK() {
		return errRunFailed
	}
	return nil
}

// buildPlan reads the plan file when one is given, otherwise parses args.
// Validation warnings go to warn; errors abort.
func buildPlan(path string, args []string, warn io.Writer) (*plan.Plan, error) {
	var (
		p    *plan.Plan
		errs []*plan.ValidationError
	)
	switch {
	case path != "" && len(args) > 0:
		return nil, fmt.Errorf("give steps as arguments or --plan, not both")
	case path != "":
		p, errs = plan.ValidateFile(path)
	case len(args) > 0:
		parsed, err := plan.ParseArgs(args)
		if err != nil {
			return nil, err
		}
		p, errs = parsed, plan.Validate(parsed)
	default:
		return nil, fmt.Errorf("no steps: pass steps as arguments or use --plan")
	}
	if err := reportValidation(warn, errs); err != nil {
		return nil, err
	}
	return p, nil
}

func reportValidation(w io.Writer, errs []*plan.ValidationError) error {
	n := 0
	for _, e := range errs {
		if e.Severity == "warning" {
			fmt.Fprintf(w, "  ⚠ [%s] %s\n", e.Phase, e.Message)
			if e.Path != "" {
				fmt.Fprintf(w, "    at: %s\n", e.Path)
			}
			continue
		}
		n++
		fmt.Fprintf(w, "  %d. [%s] %s\n", n, e.Phase, e.Message)
		if e.Path != "" {
			fmt.Fprintf(w, "     at: %s\n", e.Path)
		}
	}
	if n > 0 {
		return fmt.Errorf("validation failed: %d error(s)", n)
	}
	return nil
}

func known(reg *registry.Registry) func(module, function string) bool {
	return func(module, function string) bool {
		_, ok := reg.Lookup(module, function)
		return ok
	}
}

// openTrace opens the JSONL trace file, or returns nil when path is empty.
func openTrace(path, runID string) (*trace.Writer, error) {
	if path == "" {
		return nil, nil
	}
	tw, err := trace.NewFileWriter(path, runID)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	return tw, nil
}

func init() {
	runCmd.Flags().StringVar(&runPlan, "plan", "", "Plan YAML file to run")
	runCmd.Flags().String("trace", "", "Append JSONL trace events to this file")
	runCmd.Flags().String("report", "text", "Report format: text, md or json")
}
