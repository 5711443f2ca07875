// Package engine runs a sequence against a registry, one step at a time, and
// records exactly one result per step.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ormasoftchile/tseq/pkg/binding"
	"github.com/ormasoftchile/tseq/pkg/logging"
	"github.com/ormasoftchile/tseq/pkg/registry"
	"github.com/ormasoftchile/tseq/pkg/sequence"
	"github.com/ormasoftchile/tseq/pkg/trace"
)

// ErrFunctionNotFound marks a step whose module.function is not registered.
var ErrFunctionNotFound = errors.New("function not found")

// Resolver looks up registered functions. *registry.Registry implements it.
type Resolver interface {
	Lookup(module, function string) (*registry.FunctionEntry, bool)
}

// Observer receives each result as soon as its step finishes.
type Observer func(StepResult)

// RunConfig configures a run.
type RunConfig struct {
	RunID    string        // generated when empty
	Trace    *trace.Writer // optional JSONL event stream
	Observer Observer      // optional
	Logger   *zerolog.Logger
}

// Engine executes sequences.
type Engine struct {
	cfg    RunConfig
	reg    Resolver
	trace  *trace.Writer
	logger zerolog.Logger
}

// New creates an engine bound to a registry.
func New(reg Resolver, cfg RunConfig) *Engine {
	logger := logging.Component("engine")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Engine{
		cfg:    cfg,
		reg:    reg,
		trace:  cfg.Trace,
		logger: logger,
	}
}

// Run executes every step of seq in order. Nothing a step does stops the
// steps after it, so the trace always has one result per step. The context
// is handed to test functions; the engine itself never aborts on it.
func (e *Engine) Run(ctx context.Context, seq *sequence.Sequence) *Trace {
	runID := e.cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	steps := seq.Steps()
	tr := &Trace{
		RunID:   runID,
		Started: time.Now(),
		Results: make([]StepResult, 0, len(steps)),
	}
	logger := e.logger.With().Str("run_id", runID).Logger()
	logger.Info().Int("steps", len(steps)).Msg("run start")
	if e.trace != nil {
		e.trace.SetRunID(runID)
		e.trace.EmitRunStart(len(steps))
	}

	for i, step := range steps {
		if e.trace != nil {
			e.trace.EmitStepStart(string(step.ID()), i, step.Label())
		}
		start := time.Now()
		res := e.executeStep(ctx, step)
		res.StepID = step.ID()
		res.Index = i
		res.Label = step.Label()
		res.Duration = time.Since(start)
		tr.Results = append(tr.Results, res)

		ev := logger.Debug()
		if res.Kind.Failed() {
			ev = logger.Warn()
		}
		ev.Int("index", i).Str("step", res.Label).Str("kind", string(res.Kind)).
			Str("message", res.Message).Dur("duration", res.Duration).Msg("step complete")
		if e.trace != nil {
			e.trace.EmitStepComplete(string(res.StepID), string(res.Kind), res.Message, res.Duration)
		}
		if e.cfg.Observer != nil {
			e.cfg.Observer(res)
		}
	}

	tr.Duration = time.Since(tr.Started)
	logger.Info().Bool("ok", tr.OK()).Dur("duration", tr.Duration).Msg("run complete")
	if e.trace != nil {
		e.trace.EmitRunComplete(tr.countsByName(), tr.OK(), tr.Duration)
	}
	return tr
}

func (e *Engine) executeStep(ctx context.Context, step sequence.Step) StepResult {
	switch s := step.(type) {
	case *sequence.ControlStep:
		return StepResult{Kind: KindControlMarker, Message: string(s.Kind())}
	case *sequence.FunctionStep:
		return e.executeFunction(ctx, s)
	}
	return StepResult{Kind: KindFailure, Message: fmt.Sprintf("unsupported step %T", step)}
}

func (e *Engine) executeFunction(ctx context.Context, s *sequence.FunctionStep) StepResult {
	entry, ok := e.reg.Lookup(s.Module(), s.Function())
	if !ok {
		err := fmt.Errorf("%s %w", s.Label(), ErrFunctionNotFound)
		return StepResult{Kind: KindNotFound, Message: s.Label() + " not found", Err: err}
	}

	args, err := binding.Bind(s, entry.Signature)
	if err != nil {
		return StepResult{Kind: KindArgumentError, Message: err.Error(), Err: err}
	}

	var out bytes.Buffer
	ret, err := entry.Invoke(registry.WithOutput(ctx, &out), args)
	res := classify(ret, err)
	res.Output = strings.TrimRight(out.String(), "\r\n")
	return res
}

// classify maps an invocation outcome to a result kind. An error is a
// failure, a missing return value is a success, and any other value is a
// success exactly when it is truthy.
func classify(ret any, err error) StepResult {
	if err != nil {
		return StepResult{Kind: KindFailure, Message: err.Error(), Err: err}
	}
	if ret == nil {
		return StepResult{Kind: KindSuccess}
	}
	msg := "returned " + formatValue(ret)
	if !Truthy(ret) {
		return StepResult{Kind: KindFailure, Message: msg}
	}
	return StepResult{Kind: KindSuccess, Message: msg}
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}
