// Package main provides the tseq-mcp binary, an MCP server over stdio that
// lets agents list, validate and run test sequences.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"

	"github.com/ormasoftchile/tseq/pkg/builtin"
	"github.com/ormasoftchile/tseq/pkg/config"
	"github.com/ormasoftchile/tseq/pkg/logging"
	tmcp "github.com/ormasoftchile/tseq/pkg/mcp"
	"github.com/ormasoftchile/tseq/pkg/sources"
)

var version = "dev"

func main() {
	fs := pflag.NewFlagSet("tseq-mcp", pflag.ExitOnError)
	cfgFile := fs.String("config", "", "Config file")
	fs.String("dir", ".", "Directory holding test_*.yaml unit files")
	fs.String("reserved", "test_functions", "Unit name that is never loaded as a module")
	fs.String("log-level", "info", "Log level")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(*cfgFile, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the protocol
	if err := logging.Setup(logging.Options{Level: cfg.Log.Level, Format: "json", Writer: os.Stderr}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	load := sources.NewLoader(cfg.Sources.Dir, cfg.Sources.Reserved, builtin.Module())
	logger := logging.Component("mcp")
	logger.Info().Str("dir", cfg.Sources.Dir).Msg("serving on stdio")
	if err := server.ServeStdio(tmcp.NewServer(version, load)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
