// Package registry holds the catalog of invocable test functions. A Registry
// is built by Reload from a list of source units and is read-only afterwards;
// every reload produces a fresh Registry rather than merging into the old one.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ormasoftchile/tseq/pkg/logging"
	"github.com/ormasoftchile/tseq/pkg/signature"
)

// ErrModuleLoad marks a source unit that could not be loaded.
var ErrModuleLoad = errors.New("module load failed")

// Callable is an invocable test function. Args are keyed by parameter name
// and already coerced to the declared types. A nil return value means the
// function returned nothing.
type Callable interface {
	signature.Describer
	Call(ctx context.Context, args map[string]any) (any, error)
}

// Namespace is the set of named callables a source unit exposes.
type Namespace map[string]Callable

// Source is one loadable unit of test functions.
type Source interface {
	Name() string
	Load(ctx context.Context) (Namespace, error)
}

// Loader rebuilds a registry on demand. Front ends hold one so a reload
// command can pick up edited source units.
type Loader func(ctx context.Context) (*Registry, []Diagnostic)

// FunctionEntry is one resolved test function.
type FunctionEntry struct {
	Module    string
	Name      string
	Callable  Callable
	Signature signature.Signature
}

// Label returns "module.function".
func (e *FunctionEntry) Label() string {
	return e.Module + "." + e.Name
}

// Diagnostic records a unit or function that failed to load.
type Diagnostic struct {
	Module string
	Err    error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %v", d.Module, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// Registry maps module → function → entry.
type Registry struct {
	modules map[string]map[string]*FunctionEntry
}

// Reload loads every source in order. A source that fails to load, including
// by panicking, contributes no functions and one diagnostic; loading carries
// on with the rest. A function with an invalid signature is left out with a
// diagnostic of its own. Logs go to the logger carried by ctx, if any.
func Reload(ctx context.Context, sources []Source) (*Registry, []Diagnostic) {
	logger := logging.FromContext(ctx, "registry")
	reg := &Registry{modules: make(map[string]map[string]*FunctionEntry)}
	var diags []Diagnostic

	for _, src := range sources {
		name := src.Name()
		if _, dup := reg.modules[name]; dup {
			diags = append(diags, Diagnostic{
				Module: name,
				Err:    fmt.Errorf("%w: duplicate module name", ErrModuleLoad),
			})
			continue
		}
		ns, err := loadSource(ctx, src)
		if err != nil {
			logger.Warn().Str("module", name).Err(err).Msg("module skipped")
			diags = append(diags, Diagnostic{Module: name, Err: fmt.Errorf("%w: %w", ErrModuleLoad, err)})
			continue
		}
		fns := make(map[string]*FunctionEntry)
		for fname, c := range ns {
			if strings.HasPrefix(fname, "_") || c == nil {
				continue
			}
			sig := c.Signature()
			if err := sig.Validate(); err != nil {
				logger.Warn().Str("module", name).Str("function", fname).Err(err).Msg("function skipped")
				diags = append(diags, Diagnostic{
					Module: name,
					Err:    fmt.Errorf("%w: %s: %w", ErrModuleLoad, fname, err),
				})
				continue
			}
			fns[fname] = &FunctionEntry{
				Module:    name,
				Name:      fname,
				Callable:  c,
				Signature: sig,
			}
		}
		if len(fns) > 0 {
			reg.modules[name] = fns
		}
	}

	logger.Info().
		Int("modules", len(reg.modules)).
		Int("functions", reg.Len()).
		Int("diagnostics", len(diags)).
		Msg("registry reloaded")
	return reg, diags
}

func loadSource(ctx context.Context, src Source) (ns Namespace, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return src.Load(ctx)
}

// Lookup resolves module.function.
func (r *Registry) Lookup(module, function string) (*FunctionEntry, bool) {
	fns, ok := r.modules[module]
	if !ok {
		return nil, false
	}
	e, ok := fns[function]
	return e, ok
}

// Modules returns the module names in sorted order.
func (r *Registry) Modules() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Functions returns the function names of a module in sorted order.
func (r *Registry) Functions(module string) []string {
	fns := r.modules[module]
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns every entry sorted by module then function.
func (r *Registry) Entries() []*FunctionEntry {
	var out []*FunctionEntry
	for _, m := range r.Modules() {
		for _, f := range r.Functions(m) {
			out = append(out, r.modules[m][f])
		}
	}
	return out
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	n := 0
	for _, fns := range r.modules {
		n += len(fns)
	}
	return n
}
