package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/tseq/pkg/render"
	"github.com/ormasoftchile/tseq/pkg/trace"
)

var traceCmd = &cobra.Command{
	Use:   "trace [trace.jsonl]",
	Short: "Summarise the runs recorded in a trace file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		events, err := trace.Read(f)
		if err != nil {
			return err
		}
		for _, s := range trace.Summarize(events) {
			status := render.ErrorStyle.Render("failed")
			switch {
			case !s.Finished:
				status = render.DimStyle.Render("incomplete")
			case s.OK:
				status = "passed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %d/%d steps  %s\n",
				s.RunID, s.Started.Format("2006-01-02 15:04:05"), s.Completed, s.Steps, status)
			for _, failure := range s.Failures {
				fmt.Fprintf(cmd.OutOrStdout(), "    %s %s\n", render.GlyphFailed, failure)
			}
		}
		return nil
	},
}
