package registry

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/ormasoftchile/tseq/pkg/signature"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// GoModule is a source unit of Go functions. Each function registers itself
// with explicit parameter names:
//
//	m := registry.NewGoModule("test_math")
//	m.Register("add_positive", AddPositive, "a", "b")
//
// Parameter types come from the function type. A function may take a leading
// context.Context and may return nothing, an error, a value, or a value and an
// error. Registration mistakes surface as a load error of the whole module.
type GoModule struct {
	name  string
	funcs Namespace
	errs  []error
}

// NewGoModule creates an empty module.
func NewGoModule(name string) *GoModule {
	return &GoModule{name: name, funcs: make(Namespace)}
}

// Register adds fn under name. It returns the module for chaining.
func (m *GoModule) Register(name string, fn any, params ...string) *GoModule {
	if _, dup := m.funcs[name]; dup {
		m.errs = append(m.errs, fmt.Errorf("function %q registered twice", name))
		return m
	}
	gf, err := newGoFunc(fn, params)
	if err != nil {
		m.errs = append(m.errs, fmt.Errorf("function %q: %w", name, err))
		return m
	}
	m.funcs[name] = gf
	return m
}

// Name returns the module name.
func (m *GoModule) Name() string { return m.name }

// Load returns the registered functions, or every registration error joined.
func (m *GoModule) Load(context.Context) (Namespace, error) {
	if len(m.errs) > 0 {
		return nil, errors.Join(m.errs...)
	}
	ns := make(Namespace, len(m.funcs))
	for k, v := range m.funcs {
		ns[k] = v
	}
	return ns, nil
}

type goFunc struct {
	fn       reflect.Value
	sig      signature.Signature
	in       []reflect.Type
	withCtx  bool
	hasValue bool
	hasErr   bool
}

func newGoFunc(fn any, names []string) (*goFunc, error) {
	sig, err := signature.Describe(fn)
	if err != nil {
		return nil, err
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.IsVariadic() {
		return nil, fmt.Errorf("variadic functions are not supported")
	}
	if len(sig.Params) != len(names) {
		return nil, fmt.Errorf("%d parameter names for %d parameters", len(names), len(sig.Params))
	}

	gf := &goFunc{fn: v, sig: sig}
	first := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		gf.withCtx = true
		first = 1
	}
	// Describe numbers the parameters; the registered names replace them.
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if name == "" || seen[name] {
			return nil, fmt.Errorf("parameter %d: empty or duplicate name %q", i, name)
		}
		seen[name] = true
		gf.sig.Params[i].Name = name
		gf.in = append(gf.in, t.In(first+i))
	}

	switch t.NumOut() {
	case 0:
	case 1:
		gf.hasErr = t.Out(0) == errorType
		gf.hasValue = !gf.hasErr
	case 2:
		if t.Out(1) != errorType {
			return nil, fmt.Errorf("second result must be error, got %s", t.Out(1))
		}
		gf.hasValue, gf.hasErr = true, true
	default:
		return nil, fmt.Errorf("too many results (%d)", t.NumOut())
	}
	return gf, nil
}

func (g *goFunc) Signature() signature.Signature { return g.sig }

func (g *goFunc) Call(ctx context.Context, args map[string]any) (any, error) {
	in := make([]reflect.Value, 0, len(g.in)+1)
	if g.withCtx {
		in = append(in, reflect.ValueOf(ctx))
	}
	for i, p := range g.sig.Params {
		av, err := convertArg(args[p.Name], g.in[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		in = append(in, av)
	}

	out := g.fn.Call(in)

	if g.hasErr {
		if errV := out[len(out)-1]; !errV.IsNil() {
			return nil, errV.Interface().(error)
		}
	}
	if !g.hasValue {
		return nil, nil
	}
	rv := out[0]
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
	}
	return rv.Interface(), nil
}

// convertArg fits a coerced argument (bool, int, float64 or string) into the
// Go parameter type.
func convertArg(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(arg)
	switch t.Kind() {
	case reflect.Interface:
		if !v.Type().Implements(t) {
			return reflect.Value{}, fmt.Errorf("%T does not implement %s", arg, t)
		}
		out := reflect.New(t).Elem()
		out.Set(v)
		return out, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !v.CanInt() {
			break
		}
		out := reflect.New(t).Elem()
		if out.OverflowInt(v.Int()) {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", v.Int(), t)
		}
		out.SetInt(v.Int())
		return out, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if !v.CanInt() {
			break
		}
		out := reflect.New(t).Elem()
		if v.Int() < 0 || out.OverflowUint(uint64(v.Int())) {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", v.Int(), t)
		}
		out.SetUint(uint64(v.Int()))
		return out, nil
	case reflect.Float32, reflect.Float64:
		if v.CanFloat() || v.CanInt() {
			return v.Convert(t), nil
		}
	case reflect.Bool, reflect.String:
		if v.Kind() == t.Kind() {
			return v.Convert(t), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, t)
}
