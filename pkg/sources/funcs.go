package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"os/exec"
	"strings"
	"text/template"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ormasoftchile/tseq/pkg/registry"
	"github.com/ormasoftchile/tseq/pkg/signature"
)

func evalSetup(setup Setup) (map[string]any, error) {
	env := make(map[string]any, len(setup))
	for _, v := range setup {
		out, err := expr.Eval(v.Expr, env)
		if err != nil {
			return nil, fmt.Errorf("setup %q: %w", v.Name, err)
		}
		env[v.Name] = out
	}
	return env, nil
}

func compileFunction(def FunctionDef, env map[string]any, dir string) (registry.Callable, error) {
	sig, err := signatureOf(def)
	if err != nil {
		return nil, err
	}
	switch {
	case def.Expr != "" && len(def.Argv) > 0:
		return nil, fmt.Errorf("expr and argv are mutually exclusive")
	case def.Expr != "":
		return compileExpr(sig, def.Expr, env)
	case len(def.Argv) > 0:
		return compileCommand(sig, def.Argv, env, dir)
	}
	return nil, fmt.Errorf("function has no body: set expr or argv")
}

// exprFunc evaluates an expr-lang expression over the setup environment and
// the bound arguments.
type exprFunc struct {
	sig     signature.Signature
	program *vm.Program
	env     map[string]any
}

func compileExpr(sig signature.Signature, src string, env map[string]any) (*exprFunc, error) {
	typed := maps.Clone(env)
	for _, p := range sig.Params {
		typed[p.Name] = zeroOf(p.Type)
	}
	program, err := expr.Compile(src, expr.Env(typed))
	if err != nil {
		return nil, fmt.Errorf("compile expr: %w", err)
	}
	return &exprFunc{sig: sig, program: program, env: env}, nil
}

func zeroOf(t signature.Type) any {
	switch t {
	case signature.Bool:
		return false
	case signature.Int:
		return 0
	case signature.Float:
		return 0.0
	}
	return ""
}

func (f *exprFunc) Signature() signature.Signature { return f.sig }

func (f *exprFunc) Call(_ context.Context, args map[string]any) (any, error) {
	vars := maps.Clone(f.env)
	if vars == nil {
		vars = make(map[string]any, len(args))
	}
	for k, v := range args {
		vars[k] = v
	}
	out, err := expr.Run(f.program, vars)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// commandFunc runs a process. Exit status 0 is a pass with no return value;
// anything else fails with the trimmed stderr.
type commandFunc struct {
	sig  signature.Signature
	argv []*template.Template
	env  map[string]any
	dir  string
}

func compileCommand(sig signature.Signature, argv []string, env map[string]any, dir string) (*commandFunc, error) {
	f := &commandFunc{sig: sig, env: env, dir: dir}
	for i, arg := range argv {
		t, err := template.New(fmt.Sprintf("argv[%d]", i)).
			Option("missingkey=zero").
			Funcs(templateFuncs()).
			Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("argv[%d] template: %w", i, err)
		}
		f.argv = append(f.argv, t)
	}
	return f, nil
}

func (f *commandFunc) Signature() signature.Signature { return f.sig }

func (f *commandFunc) Call(ctx context.Context, args map[string]any) (any, error) {
	vars := maps.Clone(f.env)
	if vars == nil {
		vars = make(map[string]any, len(args))
	}
	for k, v := range args {
		vars[k] = v
	}

	argv := make([]string, len(f.argv))
	for i, t := range f.argv {
		var buf bytes.Buffer
		if err := t.Execute(&buf, vars); err != nil {
			return nil, fmt.Errorf("argv[%d] template: %w", i, err)
		}
		argv[i] = buf.String()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //#nosec G204 -- argv comes from a unit authored by the sequence owner
	cmd.Dir = f.dir
	var stderr bytes.Buffer
	cmd.Stdout = registry.Output(ctx)
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("exec %q: %w", argv[0], err)
	}
	if msg := strings.TrimSpace(normalizeLineEndings(stderr.String())); msg != "" {
		return nil, errors.New(msg)
	}
	return nil, fmt.Errorf("exit status %d", exitErr.ExitCode())
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"default": func(def, val any) any {
			if val == nil || fmt.Sprint(val) == "" {
				return def
			}
			return val
		},
		"contains": func(s, substr any) bool {
			return strings.Contains(fmt.Sprint(s), fmt.Sprint(substr))
		},
		"upper": func(s any) string { return strings.ToUpper(fmt.Sprint(s)) },
		"lower": func(s any) string { return strings.ToLower(fmt.Sprint(s)) },
		"trim":  func(s any) string { return strings.TrimSpace(fmt.Sprint(s)) },
	}
}

// normalizeLineEndings replaces \r\n with \n for cross-platform consistency.
func normalizeLineEndings(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
