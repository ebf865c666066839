package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the full trace so failures are debuggable from the message
// alone.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s -> %s\n", event.Seq, event.Op, event.Path, event.Outcome)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and
// returns the failure messages. An empty slice means all held.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertCounterEquals:
			err = assertCounterEquals(result, a)
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// assertCounterEquals checks a final counter value.
func assertCounterEquals(result *Result, a Assertion) error {
	actual, ok := result.Counters[a.Counter]
	if !ok {
		return &AssertionError{
			Type:     AssertCounterEquals,
			Expected: fmt.Sprintf("counter %s = %d", a.Counter, a.Value),
			Actual:   fmt.Sprintf("counter %s does not exist", a.Counter),
			Trace:    result.Trace,
		}
	}
	if actual != a.Value {
		return &AssertionError{
			Type:     AssertCounterEquals,
			Expected: fmt.Sprintf("counter %s = %d", a.Counter, a.Value),
			Actual:   fmt.Sprintf("counter %s = %d", a.Counter, actual),
			Trace:    result.Trace,
		}
	}
	return nil
}

// matchEvent checks an event against an assertion's op/path/outcome,
// with empty assertion fields matching anything.
func matchEvent(ev TraceEvent, a Assertion) bool {
	if a.Op != "" && ev.Op != a.Op {
		return false
	}
	if a.Path != "" && ev.Path != a.Path {
		return false
	}
	if a.Outcome != "" && ev.Outcome != a.Outcome {
		return false
	}
	return true
}

// assertTraceContains checks that a matching operation appears in the
// trace (subset match).
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, event := range trace {
		if matchEvent(event, a) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describeMatch(a),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceCount checks that a matching operation appears exactly
// Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if matchEvent(event, a) {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%s exactly %d times", describeMatch(a), a.Count),
			Actual:   fmt.Sprintf("found %d times", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertTraceOrder checks that the listed ops appear in order; they need
// not be consecutive.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	// First position of each expected op, 1-indexed for readability.
	positions := make(map[string]int)
	for i, event := range trace {
		for _, op := range a.Ops {
			if event.Op == op && positions[op] == 0 {
				positions[op] = i + 1
			}
		}
	}

	for _, op := range a.Ops {
		if positions[op] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all ops present: %v", a.Ops),
				Actual:   fmt.Sprintf("missing op: %s", op),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(a.Ops); i++ {
		prev, curr := a.Ops[i-1], a.Ops[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("ops in order: %v", a.Ops),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

func describeMatch(a Assertion) string {
	var parts []string
	if a.Op != "" {
		parts = append(parts, "op "+a.Op)
	}
	if a.Path != "" {
		parts = append(parts, "path "+a.Path)
	}
	if a.Outcome != "" {
		parts = append(parts, "outcome "+a.Outcome)
	}
	if len(parts) == 0 {
		return "any event"
	}
	return strings.Join(parts, ", ")
}
