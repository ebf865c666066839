package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot captures a scenario execution for golden comparison.
// All fields use canonical JSON serialization so snapshots compare
// byte-for-byte across runs.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	Counters     map[string]int64
}

// toCanonicalMap converts the snapshot to plain maps for MarshalCanonical.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"seq":     event.Seq,
			"op":      event.Op,
			"path":    event.Path,
			"outcome": event.Outcome,
		}
		if event.Offset != nil {
			eventMap["offset"] = *event.Offset
		}
		if event.Size != nil {
			eventMap["size"] = *event.Size
		}
		traceList[i] = eventMap
	}

	counters := make(map[string]any, len(s.Counters))
	for name, value := range s.Counters {
		counters[name] = value
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
		"counters":      counters,
	}
}

// RunWithGolden executes a scenario and compares its trace and final
// counters against testdata/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can additionally assert on pass/fail;
// a snapshot mismatch fails the test via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := &TraceSnapshot{
		ScenarioName: scenario.Name,
		Trace:        result.Trace,
		Counters:     result.Counters,
	}
	data, err := MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return nil, err
	}

	g := goldie.New(t)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
