package engine

import (
	"time"

	"github.com/ormasoftchile/tseq/pkg/sequence"
)

// Kind classifies the outcome of one step.
type Kind string

const (
	KindSuccess       Kind = "success"
	KindFailure       Kind = "failure"
	KindNotFound      Kind = "not_found"
	KindArgumentError Kind = "argument_error"
	KindControlMarker Kind = "control_marker"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindSuccess, KindFailure, KindNotFound, KindArgumentError, KindControlMarker}

// Failed reports whether the kind counts against the run.
func (k Kind) Failed() bool {
	return k == KindFailure || k == KindNotFound || k == KindArgumentError
}

// StepResult is the outcome of one step.
type StepResult struct {
	StepID   sequence.StepID `json:"step_id"`
	Index    int             `json:"index"`
	Label    string          `json:"label"`
	Kind     Kind            `json:"kind"`
	Message  string          `json:"message,omitempty"`
	Output   string          `json:"output,omitempty"`
	Duration time.Duration   `json:"duration"`
	Err      error           `json:"-"`
}

// Trace is the ordered list of results of one run.
type Trace struct {
	RunID    string        `json:"run_id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Results  []StepResult  `json:"results"`
}

// Len returns the number of results.
func (t *Trace) Len() int { return len(t.Results) }

// Counts returns the number of results of each kind.
func (t *Trace) Counts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, r := range t.Results {
		counts[r.Kind]++
	}
	return counts
}

// OK reports whether no step failed, went unresolved or had bad arguments.
func (t *Trace) OK() bool {
	for _, r := range t.Results {
		if r.Kind.Failed() {
			return false
		}
	}
	return true
}

func (t *Trace) countsByName() map[string]int {
	out := make(map[string]int)
	for k, n := range t.Counts() {
		out[string(k)] = n
	}
	return out
}
