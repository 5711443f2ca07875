package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ormasoftchile/tseq/pkg/repl"
	"github.com/ormasoftchile/tseq/pkg/tui"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Compose and run a sequence interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw, err := openTrace(cfg.Trace.File, uuid.NewString())
		if err != nil {
			return err
		}
		if tw != nil {
			defer tw.Close()
		}
		return repl.New(cmd.Context(), newLoader(), tw).Run(cmd.Context())
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Compose and run a sequence in a terminal UI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw, err := openTrace(cfg.Trace.File, uuid.NewString())
		if err != nil {
			return err
		}
		if tw != nil {
			defer tw.Close()
		}
		model := tui.NewModel(cmd.Context(), newLoader(), tw)
		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	},
}

func init() {
	replCmd.Flags().String("trace", "", "Append JSONL trace events to this file")
	tuiCmd.Flags().String("trace", "", "Append JSONL trace events to this file")
}
