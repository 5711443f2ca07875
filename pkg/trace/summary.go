package trace

import (
	"fmt"
	"time"
)

// RunSummary condenses the events of one run.
type RunSummary struct {
	RunID     string
	Started   time.Time
	Steps     int // announced by run_start
	Completed int // step_complete events seen
	OK        bool
	Finished  bool
	Failures  []string // "label: kind message" per step that did not pass
}

// Summarize groups events into runs. A run begins at each run_start, so
// several runs written under the same run ID stay apart. Events before the
// first run_start are ignored.
func Summarize(events []Event) []RunSummary {
	var (
		out    []RunSummary
		cur    *RunSummary
		labels map[string]string
	)
	for _, evt := range events {
		if evt.Type == EventRunStart {
			out = append(out, RunSummary{RunID: evt.RunID, Started: evt.Timestamp, Steps: intField(evt.Data, "steps")})
			cur = &out[len(out)-1]
			labels = make(map[string]string)
			continue
		}
		if cur == nil {
			continue
		}
		switch evt.Type {
		case EventStepStart:
			labels[stringField(evt.Data, "step_id")] = stringField(evt.Data, "label")
		case EventStepComplete:
			cur.Completed++
			kind := stringField(evt.Data, "kind")
			if kind == "success" || kind == "control_marker" {
				continue
			}
			f := fmt.Sprintf("%s: %s", labels[stringField(evt.Data, "step_id")], kind)
			if msg := stringField(evt.Data, "message"); msg != "" {
				f += " " + msg
			}
			cur.Failures = append(cur.Failures, f)
		case EventRunComplete:
			cur.Finished = true
			cur.OK = stringField(evt.Data, "status") == "passed"
		}
	}
	return out
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// intField reads a number decoded from JSON.
func intField(data map[string]any, key string) int {
	switch n := data[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}
