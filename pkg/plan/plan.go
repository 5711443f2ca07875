// Package plan reads plan files: YAML documents that describe a sequence to
// compose and run. Plans are input only and are never written back.
//
//	name: smoke
//	steps:
//	  - call: test_math.add_positive
//	    params: {a: 2, b: 3}
//	  - control: for
//	  - call: test_builtin.echo
//	    params: {msg: hello}
//	  - control: end
package plan

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/tseq/pkg/sequence"
)

// Plan is a named list of steps.
type Plan struct {
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Steps       []Step `yaml:"steps" json:"steps"`
}

// Step is either a call or a control marker.
type Step struct {
	Call    string            `yaml:"call,omitempty" json:"call,omitempty" jsonschema:"pattern=^\\S+\\.[A-Za-z_][A-Za-z0-9_]*$"`
	Params  map[string]string `yaml:"params,omitempty" json:"params,omitempty"`
	Control string            `yaml:"control,omitempty" json:"control,omitempty" jsonschema:"enum=if,enum=for,enum=end"`
}

// JSONSchemaExtend requires exactly one of call and control.
func (Step) JSONSchemaExtend(s *jsonschema.Schema) {
	s.OneOf = []*jsonschema.Schema{
		{Required: []string{"call"}},
		{Required: []string{"control"}},
	}
}

// SplitCall splits "module.function" at the last dot.
func SplitCall(call string) (module, function string, err error) {
	i := strings.LastIndex(call, ".")
	if i <= 0 || i == len(call)-1 {
		return "", "", fmt.Errorf("call %q: want module.function", call)
	}
	return call[:i], call[i+1:], nil
}

// LoadFile reads and structurally decodes a plan file.
func LoadFile(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a plan strictly: unknown fields are errors.
func Load(r io.Reader) (*Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return &p, nil
		}
		return nil, fmt.Errorf("structural decode: %w", err)
	}
	return &p, nil
}

// Sequence builds a fresh sequence from the plan. Every call step gets its own
// parameter values.
func (p *Plan) Sequence() (*sequence.Sequence, error) {
	seq := sequence.New()
	for i, st := range p.Steps {
		step, err := st.build()
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		seq.Append(step)
	}
	return seq, nil
}

func (st Step) build() (sequence.Step, error) {
	switch {
	case st.Call != "" && st.Control != "":
		return nil, fmt.Errorf("call and control are mutually exclusive")
	case st.Control != "":
		kind, ok := sequence.ParseControlKind(st.Control)
		if !ok {
			return nil, fmt.Errorf("unknown control %q", st.Control)
		}
		return sequence.NewControlStep(kind), nil
	case st.Call != "":
		module, function, err := SplitCall(st.Call)
		if err != nil {
			return nil, err
		}
		fs := sequence.NewFunctionStep(module, function)
		for k, v := range st.Params {
			fs.SetParam(k, v)
		}
		return fs, nil
	}
	return nil, fmt.Errorf("step needs call or control")
}
