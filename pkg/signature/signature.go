// Package signature describes the call shape of a test function: its ordered
// parameters with declared types and an optional declared return type.
package signature

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// Type is the declared type of a parameter or return value.
type Type string

const (
	Bool    Type = "bool"
	Int     Type = "int"
	Float   Type = "float"
	String  Type = "string"
	Untyped Type = "untyped"
)

// ParseType maps a type name as written in a source unit to a Type.
// The empty string is Untyped.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "untyped", "any":
		return Untyped, nil
	case "bool", "boolean":
		return Bool, nil
	case "int", "integer":
		return Int, nil
	case "float", "number":
		return Float, nil
	case "string", "str":
		return String, nil
	}
	return "", fmt.Errorf("unknown type %q", s)
}

// Param is one declared parameter.
type Param struct {
	Name string `json:"name" yaml:"name"`
	Type Type   `json:"type" yaml:"type"`
}

// Signature is the ordered parameter list of a callable. Returns is empty when
// no return type is declared.
type Signature struct {
	Params  []Param `json:"params"`
	Returns Type    `json:"returns,omitempty"`
}

// Names returns the parameter names in declaration order.
func (s Signature) Names() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}

// Has reports whether name is a declared parameter.
func (s Signature) Has(name string) bool {
	for _, p := range s.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Equal reports whether both signatures declare the same parameters and return type.
func (s Signature) Equal(o Signature) bool {
	if s.Returns != o.Returns || len(s.Params) != len(o.Params) {
		return false
	}
	for i := range s.Params {
		if s.Params[i] != o.Params[i] {
			return false
		}
	}
	return true
}

// String renders the signature as "(a int, b int) -> bool".
func (s Signature) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		if p.Type != Untyped && p.Type != "" {
			b.WriteByte(' ')
			b.WriteString(string(p.Type))
		}
	}
	b.WriteByte(')')
	if s.Returns != "" {
		b.WriteString(" -> ")
		b.WriteString(string(s.Returns))
	}
	return b.String()
}

// Validate reports an empty or repeated parameter name or an unknown type.
func (s Signature) Validate() error {
	seen := make(map[string]bool, len(s.Params))
	for i, p := range s.Params {
		if p.Name == "" || seen[p.Name] {
			return fmt.Errorf("parameter %d: empty or duplicate name %q", i, p.Name)
		}
		seen[p.Name] = true
		if _, err := ParseType(string(p.Type)); err != nil {
			return fmt.Errorf("parameter %s: %w", p.Name, err)
		}
	}
	if _, err := ParseType(string(s.Returns)); err != nil {
		return fmt.Errorf("returns: %w", err)
	}
	return nil
}

// Describer is implemented by callables that carry their own signature.
type Describer interface {
	Signature() Signature
}

var contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Describe returns the signature of a callable. Describers answer for
// themselves; plain Go functions are reflected, with positional names
// arg0..argN since Go does not keep parameter names at run time. A leading
// context.Context and a trailing error result are not part of the signature.
// Registry callables always describe themselves; GoModule reflects the
// functions handed to Register through here and then applies their names.
func Describe(callable any) (Signature, error) {
	if d, ok := callable.(Describer); ok {
		return d.Signature(), nil
	}
	if callable == nil {
		return Signature{}, fmt.Errorf("describe: nil callable")
	}
	t := reflect.TypeOf(callable)
	if t.Kind() != reflect.Func {
		return Signature{}, fmt.Errorf("describe: %s is not a function", t)
	}
	var sig Signature
	first := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		first = 1
	}
	for i := first; i < t.NumIn(); i++ {
		sig.Params = append(sig.Params, Param{
			Name: fmt.Sprintf("arg%d", i-first),
			Type: TypeOf(t.In(i)),
		})
	}
	for i := 0; i < t.NumOut(); i++ {
		if t.Out(i) == errorType {
			continue
		}
		sig.Returns = TypeOf(t.Out(i))
		break
	}
	return sig, nil
}

// TypeOf maps a Go type to the declared Type used for text coercion.
func TypeOf(t reflect.Type) Type {
	switch t.Kind() {
	case reflect.Bool:
		return Bool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int
	case reflect.Float32, reflect.Float64:
		return Float
	case reflect.String:
		return String
	}
	return Untyped
}
