package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/tseq/pkg/engine"
	"github.com/ormasoftchile/tseq/pkg/logging"
	"github.com/ormasoftchile/tseq/pkg/plan"
	"github.com/ormasoftchile/tseq/pkg/registry"
)

// Handlers implements the tseq MCP tools on top of a registry loader.
type Handlers struct {
	Load registry.Loader
}

type catalogFunction struct {
	Module    string `json:"module"`
	Name      string `json:"name"`
	Signature string `json:"signature"`
}

type catalogResponse struct {
	Functions []catalogFunction `json:"functions"`
	Errors    []string          `json:"errors,omitempty"`
}

// HandleCatalog implements the tseq/catalog MCP tool.
func (h *Handlers) HandleCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reg, diags := h.Load(ctx)
	resp := catalogResponse{Functions: []catalogFunction{}}
	for _, e := range reg.Entries() {
		resp.Functions = append(resp.Functions, catalogFunction{
			Module:    e.Module,
			Name:      e.Name,
			Signature: e.Signature.String(),
		})
	}
	for _, d := range diags {
		resp.Errors = append(resp.Errors, d.Error())
	}
	return jsonResult(resp, false), nil
}

// HandleValidate implements the tseq/validate MCP tool.
func (h *Handlers) HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errs := loadPlan(req.GetArguments())
	if plan.HasErrors(errs) {
		return errorResult(formatErrors(errs)), nil
	}
	reg, _ := h.Load(ctx)
	errs = append(errs, plan.Unresolved(p, knownIn(reg))...)

	msg := fmt.Sprintf("✓ plan is valid (%d steps)", len(p.Steps))
	for _, e := range errs {
		msg += "\n" + e.Error()
	}
	return textResult(msg), nil
}

type runResponse struct {
	*engine.Trace
	OK     bool           `json:"ok"`
	Counts map[string]int `json:"counts"`
	Errors []string       `json:"load_errors,omitempty"`
}

// HandleRun implements the tseq/run MCP tool. The result is marked as an
// error when any step failed, was not found or had bad arguments.
func (h *Handlers) HandleRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	var (
		p    *plan.Plan
		errs []*plan.ValidationError
	)
	if steps, _ := args["steps"].(string); strings.TrimSpace(steps) != "" {
		parsed, err := plan.ParseArgs(strings.Fields(steps))
		if err != nil {
			return errorResult(err.Error()), nil
		}
		p, errs = parsed, plan.Validate(parsed)
	} else {
		p, errs = loadPlan(args)
	}
	if plan.HasErrors(errs) {
		return errorResult(formatErrors(errs)), nil
	}

	seq, err := p.Sequence()
	if err != nil {
		return errorResult(err.Error()), nil
	}

	reg, diags := h.Load(ctx)
	logger := logging.FromContext(ctx, "mcp")
	tr := engine.New(reg, engine.RunConfig{Logger: &logger}).Run(ctx, seq)

	resp := runResponse{Trace: tr, OK: tr.OK(), Counts: map[string]int{}}
	for k, n := range tr.Counts() {
		resp.Counts[string(k)] = n
	}
	for _, d := range diags {
		resp.Errors = append(resp.Errors, d.Error())
	}
	return jsonResult(resp, !tr.OK()), nil
}

// HandleSchema implements the tseq/schema MCP tool.
func HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := plan.GenerateJSONSchema()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func loadPlan(args map[string]any) (*plan.Plan, []*plan.ValidationError) {
	if path, _ := args["path"].(string); path != "" {
		return plan.ValidateFile(path)
	}
	body, _ := args["plan"].(string)
	if strings.TrimSpace(body) == "" {
		return nil, []*plan.ValidationError{{
			Phase:    "structural",
			Message:  "one of path, plan or steps is required",
			Severity: "error",
		}}
	}
	p, err := plan.Load(strings.NewReader(body))
	if err != nil {
		return nil, []*plan.ValidationError{{
			Phase:    "structural",
			Message:  err.Error(),
			Severity: "error",
		}}
	}
	return p, plan.Validate(p)
}

func knownIn(reg *registry.Registry) func(module, function string) bool {
	return func(module, function string) bool {
		_, ok := reg.Lookup(module, function)
		return ok
	}
}

func formatErrors(errs []*plan.ValidationError) string {
	var msgs []string
	for _, e := range errs {
		if e.Severity == "error" {
			msgs = append(msgs, e.Error())
		}
	}
	return strings.Join(msgs, "; ")
}

func jsonResult(v any, isErr bool) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
		IsError: isErr,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
