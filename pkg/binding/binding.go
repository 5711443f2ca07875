// Package binding turns the raw text a user typed for each parameter into
// arguments of the declared types.
package binding

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ormasoftchile/tseq/pkg/signature"
)

// ErrArgumentConversion marks text that does not parse as the declared type.
var ErrArgumentConversion = errors.New("argument conversion failed")

// ConversionError names the parameter whose text failed to convert.
type ConversionError struct {
	Param string
	Cause error
}

func (e *ConversionError) Error() string {
	return e.Param + ": " + e.Cause.Error()
}

func (e *ConversionError) Unwrap() []error {
	return []error{ErrArgumentConversion, e.Cause}
}

var truthy = map[string]bool{"true": true, "1": true, "yes": true, "on": true}

// ParseBool is true for "true", "1", "yes" and "on", ignoring case and
// surrounding space. Everything else, the empty string included, is false.
func ParseBool(text string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(text))]
}

// Coerce converts text to t. Bool never fails; string and untyped pass the
// text through unchanged.
func Coerce(text string, t signature.Type) (any, error) {
	switch t {
	case signature.Bool:
		return ParseBool(text), nil
	case signature.Int:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 0)
		if err != nil {
			return nil, parseError(text, "int", err)
		}
		return int(n), nil
	case signature.Float:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, parseError(text, "float", err)
		}
		return f, nil
	}
	return text, nil
}

func parseError(text, kind string, err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		err = ne.Err
	}
	return fmt.Errorf("invalid %s %q: %w", kind, text, err)
}

// Source supplies the raw text of a parameter; "" when unset.
type Source interface {
	Param(name string) string
}

// Bind coerces every declared parameter in order. The first failure stops
// binding and is returned as a *ConversionError.
func Bind(src Source, sig signature.Signature) (map[string]any, error) {
	args := make(map[string]any, len(sig.Params))
	for _, p := range sig.Params {
		v, err := Coerce(src.Param(p.Name), p.Type)
		if err != nil {
			return nil, &ConversionError{Param: p.Name, Cause: err}
		}
		args[p.Name] = v
	}
	return args, nil
}
