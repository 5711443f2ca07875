package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/tseq/pkg/diagram"
	"github.com/ormasoftchile/tseq/pkg/engine"
	"github.com/ormasoftchile/tseq/pkg/logging"
)

var (
	diagramPlan   string
	diagramFormat string
	diagramRun    bool
)

var diagramCmd = &cobra.Command{
	Use:   "diagram [step...]",
	Short: "Draw a sequence as an ASCII tree or a Mermaid flowchart",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPlan(diagramPlan, args, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		seq, err := p.Sequence()
		if err != nil {
			return err
		}

		var tr *engine.Trace
		if diagramRun {
			reg, _ := newLoader()(cmd.Context())
			logger := logging.Component("diagram")
			tr = engine.New(reg, engine.RunConfig{Logger: &logger}).Run(cmd.Context(), seq)
		}

		name := p.Name
		if name == "" && diagramPlan != "" {
			name = strings.TrimSuffix(filepath.Base(diagramPlan), filepath.Ext(diagramPlan))
		}
		out, err := diagram.Generate(name, seq, tr, diagram.Format(diagramFormat))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	diagramCmd.Flags().StringVar(&diagramPlan, "plan", "", "Plan YAML file to draw")
	diagramCmd.Flags().StringVar(&diagramFormat, "format", "ascii", "Diagram format: ascii or mermaid")
	diagramCmd.Flags().BoolVar(&diagramRun, "run", false, "Run the sequence first and mark each step with its outcome")
	rootCmd.AddCommand(diagramCmd)
}
