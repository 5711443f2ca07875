// Package main provides the tseq binary: compose and run sequences of test
// functions from the command line, a REPL or a terminal UI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/tseq/pkg/builtin"
	"github.com/ormasoftchile/tseq/pkg/config"
	"github.com/ormasoftchile/tseq/pkg/logging"
	"github.com/ormasoftchile/tseq/pkg/registry"
	"github.com/ormasoftchile/tseq/pkg/render"
	"github.com/ormasoftchile/tseq/pkg/sources"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tseq",
	Short: "Compose and run sequences of test functions",
	Long: "tseq loads test functions from unit files, lets you arrange them into a sequence " +
		"with if/for/end markers, and runs the sequence step by step.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		if err := logging.Setup(logging.Options{Level: c.Log.Level, Format: c.Log.Format}); err != nil {
			return err
		}
		cfg = c
		if c.File != "" {
			logger := logging.Component("cli")
			logger.Debug().Str("file", c.File).Msg("config loaded")
		}
		return nil
	},
}

// newLoader builds the registry loader for the configured sources directory.
// The builtin module is always present.
func newLoader() registry.Loader {
	return sources.NewLoader(cfg.Sources.Dir, cfg.Sources.Reserved, builtin.Module())
}

// --- catalog ---

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the available test functions and any load errors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, diags := newLoader()(cmd.Context())
		render.Catalog(cmd.OutOrStdout(), reg, diags)
		return nil
	},
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tseq %s (build: %s)\n", version, commit)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ./tseq.yaml or ~/.config/tseq/tseq.yaml)")
	pf.String("dir", ".", "Directory holding test_*.yaml unit files")
	pf.String("reserved", "test_functions", "Unit name that is never loaded as a module")
	pf.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	pf.String("log-format", "console", "Log format: console or json")

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(versionCmd)
}
