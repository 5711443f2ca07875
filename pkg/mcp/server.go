package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ormasoftchile/tseq/pkg/registry"
)

// NewServer creates an MCP server with the tseq tools registered. Every
// tool call reloads the registry through load, so edits to unit files are
// picked up without restarting the server.
func NewServer(version string, load registry.Loader) *server.MCPServer {
	s := server.NewMCPServer(
		"tseq",
		version,
		server.WithToolCapabilities(true),
	)
	h := &Handlers{Load: load}

	s.AddTool(
		mcp.NewTool("tseq/catalog",
			mcp.WithDescription("List the registered test functions with their signatures and any module load errors"),
		),
		h.HandleCatalog,
	)

	s.AddTool(
		mcp.NewTool("tseq/validate",
			mcp.WithDescription("Validate a tseq plan and report calls that are not in the catalog"),
			mcp.WithString("path", mcp.Description("Path to the plan YAML file")),
			mcp.WithString("plan", mcp.Description("Inline plan YAML, used when path is empty")),
		),
		h.HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("tseq/run",
			mcp.WithDescription("Run a sequence of test functions and return one result per step"),
			mcp.WithString("path", mcp.Description("Path to the plan YAML file")),
			mcp.WithString("plan", mcp.Description("Inline plan YAML")),
			mcp.WithString("steps", mcp.Description("Whitespace separated steps: if, for, end or module.function:name=value,name=value")),
		),
		h.HandleRun,
	)

	s.AddTool(
		mcp.NewTool("tseq/schema",
			mcp.WithDescription("Export the tseq plan JSON Schema"),
		),
		HandleSchema,
	)

	return s
}
