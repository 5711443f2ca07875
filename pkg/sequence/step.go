// Package sequence holds the ordered list of steps a user composes: function
// calls with their own parameter text, and control markers.
package sequence

import (
	"maps"
	"strings"

	"github.com/google/uuid"

	"github.com/ormasoftchile/tseq/pkg/signature"
)

// StepID identifies a step for its whole life. IDs are never reused.
type StepID string

// NewStepID mints a fresh ID.
func NewStepID() StepID {
	return StepID(uuid.NewString())
}

// ControlKind is the kind of a control marker.
type ControlKind string

const (
	ControlIf  ControlKind = "if"
	ControlFor ControlKind = "for"
	ControlEnd ControlKind = "end"
)

// ParseControlKind accepts "if", "for" or "end" in any case.
func ParseControlKind(token string) (ControlKind, bool) {
	switch k := ControlKind(strings.ToLower(strings.TrimSpace(token))); k {
	case ControlIf, ControlFor, ControlEnd:
		return k, true
	}
	return "", false
}

// Step is either a *FunctionStep or a *ControlStep.
type Step interface {
	ID() StepID
	Label() string
	step()
}

// Label returns the display label of a step.
func Label(s Step) string { return s.Label() }

// FunctionStep invokes module.function with the parameter text it owns.
// Parameter values are keyed by name and stay with the step until it is
// removed, whatever signature the function currently has.
type FunctionStep struct {
	id       StepID
	module   string
	function string
	params   map[string]string
}

// NewFunctionStep creates a call step with no parameter values.
func NewFunctionStep(module, function string) *FunctionStep {
	return &FunctionStep{
		id:       NewStepID(),
		module:   module,
		function: function,
		params:   make(map[string]string),
	}
}

func (s *FunctionStep) ID() StepID       { return s.id }
func (s *FunctionStep) Module() string   { return s.module }
func (s *FunctionStep) Function() string { return s.function }
func (s *FunctionStep) Label() string    { return s.module + "." + s.function }
func (*FunctionStep) step()              {}

// Param returns the raw text for name, or "" if never set.
func (s *FunctionStep) Param(name string) string {
	return s.params[name]
}

// SetParam stores raw text for name.
func (s *FunctionStep) SetParam(name, value string) {
	s.params[name] = value
}

// Params returns a copy of every stored value, including ones the current
// signature no longer declares.
func (s *FunctionStep) Params() map[string]string {
	return maps.Clone(s.params)
}

// VisibleParams returns the stored text for each parameter sig declares, in
// declaration order. Stale keys are left out.
func (s *FunctionStep) VisibleParams(sig signature.Signature) []ParamValue {
	out := make([]ParamValue, len(sig.Params))
	for i, p := range sig.Params {
		out[i] = ParamValue{Param: p, Value: s.params[p.Name]}
	}
	return out
}

// ParamValue pairs a declared parameter with its current text.
type ParamValue struct {
	signature.Param
	Value string
}

// ControlStep is an if/for/end marker. It is recorded but never evaluated.
type ControlStep struct {
	id   StepID
	kind ControlKind
}

// NewControlStep creates a control marker.
func NewControlStep(kind ControlKind) *ControlStep {
	return &ControlStep{id: NewStepID(), kind: kind}
}

func (s *ControlStep) ID() StepID        { return s.id }
func (s *ControlStep) Kind() ControlKind { return s.kind }
func (s *ControlStep) Label() string     { return string(s.kind) }
func (*ControlStep) step()               {}
