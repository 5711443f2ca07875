package plan

import (
	"fmt"
	"strings"

	"github.com/ormasoftchile/tseq/pkg/sequence"
)

// ParseArg reads a step written on the command line: "if", "for", "end", or
// "module.function" optionally followed by ":name=value,name=value".
func ParseArg(arg string) (Step, error) {
	if kind, ok := sequence.ParseControlKind(arg); ok {
		return Step{Control: string(kind)}, nil
	}
	call, rest, hasParams := strings.Cut(arg, ":")
	if _, _, err := SplitCall(call); err != nil {
		return Step{}, err
	}
	st := Step{Call: call}
	if !hasParams || rest == "" {
		return st, nil
	}
	st.Params = make(map[string]string)
	for _, kv := range strings.Split(rest, ",") {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return Step{}, fmt.Errorf("step %q: parameter %q: want name=value", arg, kv)
		}
		st.Params[k] = v
	}
	return st, nil
}

// ParseArgs parses every argument into a plan.
func ParseArgs(args []string) (*Plan, error) {
	p := &Plan{}
	for _, a := range args {
		st, err := ParseArg(a)
		if err != nil {
			return nil, err
		}
		p.Steps = append(p.Steps, st)
	}
	return p, nil
}
