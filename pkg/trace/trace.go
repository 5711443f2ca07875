// Package trace writes the append-only JSONL event stream of a sequence run.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// EventType enumerates the trace event types.
type EventType string

const (
	EventRunStart     EventType = "run_start"
	EventRunComplete  EventType = "run_complete"
	EventStepStart    EventType = "step_start"
	EventStepComplete EventType = "step_complete"
)

// Event is a single trace event written to the JSONL stream.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"run_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// Writer writes trace events to an append-only JSONL stream.
type Writer struct {
	mu    sync.Mutex
	w     io.Writer
	runID string
	enc   *json.Encoder
}

// NewWriter creates a trace writer that writes to the given io.Writer.
func NewWriter(w io.Writer, runID string) *Writer {
	return &Writer{
		w:     w,
		runID: runID,
		enc:   json.NewEncoder(w),
	}
}

// NewFileWriter creates a trace writer that appends to a JSONL file.
// Close releases the file.
func NewFileWriter(path, runID string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return NewWriter(f, runID), nil
}

// RunID returns the run the writer stamps on every event.
func (tw *Writer) RunID() string {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.runID
}

// SetRunID changes the run stamped on the events written after it. A writer
// shared by several runs is restamped at the start of each one.
func (tw *Writer) SetRunID(runID string) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.runID = runID
}

// Close closes the underlying writer if it is an io.Closer.
func (tw *Writer) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if c, ok := tw.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Emit writes a single trace event.
func (tw *Writer) Emit(eventType EventType, data map[string]any) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	evt := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		RunID:     tw.runID,
		Data:      data,
	}
	return tw.enc.Encode(evt)
}

// EmitRunStart emits a run_start event.
func (tw *Writer) EmitRunStart(steps int) error {
	return tw.Emit(EventRunStart, map[string]any{
		"steps": steps,
	})
}

// EmitStepStart emits a step_start event.
func (tw *Writer) EmitStepStart(stepID string, index int, label string) error {
	return tw.Emit(EventStepStart, map[string]any{
		"step_id": stepID,
		"index":   index,
		"label":   label,
	})
}

// EmitStepComplete emits a step_complete event. Kind is the step outcome.
func (tw *Writer) EmitStepComplete(stepID, kind, message string, duration time.Duration) error {
	data := map[string]any{
		"step_id":  stepID,
		"kind":     kind,
		"duration": duration.String(),
	}
	if message != "" {
		data["message"] = message
	}
	return tw.Emit(EventStepComplete, data)
}

// EmitRunComplete emits a run_complete event with per-kind totals.
func (tw *Writer) EmitRunComplete(counts map[string]int, ok bool, duration time.Duration) error {
	status := "passed"
	if !ok {
		status = "failed"
	}
	return tw.Emit(EventRunComplete, map[string]any{
		"status":   status,
		"counts":   counts,
		"duration": duration.String(),
	})
}

// Read decodes every event of a JSONL stream.
func Read(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var evt Event
		if err := json.Unmarshal(sc.Bytes(), &evt); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, evt)
	}
	return events, sc.Err()
}
