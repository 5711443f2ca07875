// Package sources loads test functions declared in YAML source units.
//
// A unit is a file named test_<something>.yaml next to the sequences that use
// it. Its module name is the file name without the extension:
//
//	description: arithmetic checks
//	setup:
//	  limit: "100"
//	  half: limit / 2
//	functions:
//	  add_positive:
//	    params:
//	      - {name: a, type: int}
//	      - {name: b, type: int}
//	    returns: bool
//	    expr: a + b > 0
//	  ping:
//	    params:
//	      - {name: host, type: string}
//	    argv: [ping, -c, "1", "{{ .host }}"]
package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/tseq/pkg/registry"
	"github.com/ormasoftchile/tseq/pkg/signature"
)

// UnitFile is the decoded form of a YAML source unit.
type UnitFile struct {
	Description string                 `yaml:"description,omitempty"`
	Setup       Setup                  `yaml:"setup,omitempty"`
	Functions   map[string]FunctionDef `yaml:"functions"`
}

// FunctionDef declares one test function. Exactly one of Expr and Argv is set.
type FunctionDef struct {
	Description string     `yaml:"description,omitempty"`
	Params      []ParamDef `yaml:"params,omitempty"`
	Returns     string     `yaml:"returns,omitempty"`
	Expr        string     `yaml:"expr,omitempty"`
	Argv        []string   `yaml:"argv,omitempty"`
}

// ParamDef declares one parameter. An omitted type is untyped.
type ParamDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
}

// SetupVar is one top-level binding evaluated when the unit loads.
type SetupVar struct {
	Name string
	Expr string
}

// Setup keeps the setup mapping in file order so later entries can use
// earlier ones.
type Setup []SetupVar

// UnmarshalYAML decodes a mapping of name → expression, preserving order.
func (s *Setup) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: setup must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: setup %q must be a scalar expression", v.Line, k.Value)
		}
		*s = append(*s, SetupVar{Name: k.Value, Expr: v.Value})
	}
	return nil
}

// FileUnit is a Source backed by one YAML file.
type FileUnit struct {
	path   string
	module string
}

// NewFileUnit creates a unit for path. The module is named after the file.
func NewFileUnit(path string) *FileUnit {
	base := filepath.Base(path)
	return &FileUnit{
		path:   path,
		module: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// Name returns the module name.
func (u *FileUnit) Name() string { return u.module }

// Path returns the file the unit reads.
func (u *FileUnit) Path() string { return u.path }

// Load reads, decodes and compiles the unit. Any problem fails the whole unit.
func (u *FileUnit) Load(ctx context.Context) (registry.Namespace, error) {
	data, err := os.ReadFile(u.path)
	if err != nil {
		return nil, fmt.Errorf("read unit: %w", err)
	}
	uf, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(u.path), err)
	}

	env, err := evalSetup(uf.Setup)
	if err != nil {
		return nil, err
	}

	ns := make(registry.Namespace, len(uf.Functions))
	for name, def := range uf.Functions {
		if strings.HasPrefix(name, "_") {
			continue
		}
		fn, err := compileFunction(def, env, filepath.Dir(u.path))
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", name, err)
		}
		ns[name] = fn
	}
	return ns, nil
}

// Decode parses a unit strictly: unknown fields are errors.
func Decode(data []byte) (*UnitFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var uf UnitFile
	if err := dec.Decode(&uf); err != nil {
		if errors.Is(err, io.EOF) {
			return &uf, nil
		}
		return nil, fmt.Errorf("yaml decode: %w", err)
	}
	return &uf, nil
}

func signatureOf(def FunctionDef) (signature.Signature, error) {
	var sig signature.Signature
	seen := make(map[string]bool)
	for i, p := range def.Params {
		if p.Name == "" {
			return sig, fmt.Errorf("param %d: missing name", i)
		}
		if seen[p.Name] {
			return sig, fmt.Errorf("param %q declared twice", p.Name)
		}
		seen[p.Name] = true
		t, err := signature.ParseType(p.Type)
		if err != nil {
			return sig, fmt.Errorf("param %q: %w", p.Name, err)
		}
		sig.Params = append(sig.Params, signature.Param{Name: p.Name, Type: t})
	}
	if def.Returns != "" {
		t, err := signature.ParseType(def.Returns)
		if err != nil {
			return sig, fmt.Errorf("returns: %w", err)
		}
		sig.Returns = t
	}
	return sig, nil
}
