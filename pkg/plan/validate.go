package plan

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ormasoftchile/tseq/pkg/sequence"
)

// ValidationError is one problem found in a plan.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic, domain
	Path     string `json:"path"`  // e.g. "steps/2/control"
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// ValidateFile runs the structural, semantic and domain checks on a plan file.
func ValidateFile(path string) (*Plan, []*ValidationError) {
	p, err := LoadFile(path)
	if err != nil {
		return nil, []*ValidationError{{
			Phase:    "structural",
			Message:  err.Error(),
			Severity: "error",
		}}
	}
	if errs := Validate(p); len(errs) > 0 {
		return p, errs
	}
	return p, nil
}

// Validate checks a decoded plan against the schema and the domain rules.
func Validate(p *Plan) []*ValidationError {
	if errs := validateSemantic(p); len(errs) > 0 {
		return errs
	}
	return validateDomain(p)
}

// HasErrors reports whether any entry is an error rather than a warning.
func HasErrors(errs []*ValidationError) bool {
	for _, e := range errs {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}

var (
	compileOnce sync.Once
	compiled    *sjsonschema.Schema
	compileErr  error
)

func planSchema() (*sjsonschema.Schema, error) {
	compileOnce.Do(func() {
		schemaJSON, err := GenerateJSONSchema()
		if err != nil {
			compileErr = fmt.Errorf("generate schema: %w", err)
			return
		}
		var schemaDoc any
		if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
			compileErr = fmt.Errorf("unmarshal schema: %w", err)
			return
		}
		c := sjsonschema.NewCompiler()
		if err := c.AddResource("plan-v1.json", schemaDoc); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile("plan-v1.json")
	})
	return compiled, compileErr
}

func validateSemantic(p *Plan) []*ValidationError {
	semantic := func(path, msg string) []*ValidationError {
		return []*ValidationError{{Phase: "semantic", Path: path, Message: msg, Severity: "error"}}
	}

	sch, err := planSchema()
	if err != nil {
		return semantic("", err.Error())
	}
	data, err := json.Marshal(p)
	if err != nil {
		return semantic("", fmt.Sprintf("marshal for schema validation: %v", err))
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return semantic("", fmt.Sprintf("unmarshal document: %v", err))
	}

	err = sch.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*sjsonschema.ValidationError)
	if !ok {
		return semantic("", err.Error())
	}
	printer := message.NewPrinter(language.English)
	var errs []*ValidationError
	for _, cause := range flattenValidationErrors(ve) {
		errs = append(errs, &ValidationError{
			Phase:    "semantic",
			Path:     strings.Join(cause.InstanceLocation, "/"),
			Message:  cause.ErrorKind.LocalizedString(printer),
			Severity: "error",
		})
	}
	return errs
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

func validateDomain(p *Plan) []*ValidationError {
	var errs []*ValidationError
	depth := 0
	for i, st := range p.Steps {
		path := fmt.Sprintf("steps/%d", i)
		if st.Control != "" && len(st.Params) > 0 {
			errs = append(errs, &ValidationError{
				Phase: "domain", Path: path + "/params",
				Message: "control markers take no parameters", Severity: "error",
			})
		}
		switch sequence.ControlKind(st.Control) {
		case sequence.ControlIf, sequence.ControlFor:
			depth++
		case sequence.ControlEnd:
			depth--
			if depth < 0 {
				errs = append(errs, &ValidationError{
					Phase: "domain", Path: path + "/control",
					Message: "end without matching if or for", Severity: "warning",
				})
				depth = 0
			}
		}
	}
	if depth > 0 {
		errs = append(errs, &ValidationError{
			Phase: "domain", Path: "steps",
			Message: fmt.Sprintf("%d if/for marker(s) without end", depth), Severity: "warning",
		})
	}
	return errs
}

// Unresolved warns about every call known does not recognise. The run still
// records such steps as not found.
func Unresolved(p *Plan, known func(module, function string) bool) []*ValidationError {
	var errs []*ValidationError
	for i, st := range p.Steps {
		if st.Call == "" {
			continue
		}
		module, function, err := SplitCall(st.Call)
		if err != nil || known(module, function) {
			continue
		}
		errs = append(errs, &ValidationError{
			Phase:    "domain",
			Path:     fmt.Sprintf("steps/%d/call", i),
			Message:  fmt.Sprintf("%s is not in the catalog", st.Call),
			Severity: "warning",
		})
	}
	return errs
}
