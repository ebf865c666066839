package harness

import (
	"fmt"

	"github.com/roach88/testvfs/internal/store"
)

// ToStoreEvents converts a result trace into store rows for recording.
func ToStoreEvents(trace []TraceEvent) []store.Event {
	events := make([]store.Event, len(trace))
	for i, ev := range trace {
		events[i] = store.Event{
			Seq:     ev.Seq,
			Op:      ev.Op,
			Path:    ev.Path,
			Offset:  ev.Offset,
			Size:    ev.Size,
			Outcome: ev.Outcome,
		}
	}
	return events
}

// Compare verifies that a fresh execution reproduced a recorded trace
// exactly. Returns one message per divergence; an empty slice means the
// replay was deterministic.
func Compare(recorded []store.Event, fresh []TraceEvent) []string {
	var diffs []string

	if len(recorded) != len(fresh) {
		diffs = append(diffs, fmt.Sprintf("trace length: recorded %d events, replay produced %d",
			len(recorded), len(fresh)))
	}

	n := len(recorded)
	if len(fresh) < n {
		n = len(fresh)
	}
	for i := 0; i < n; i++ {
		rec, got := recorded[i], fresh[i]
		switch {
		case rec.Seq != got.Seq:
			diffs = append(diffs, fmt.Sprintf("event %d: seq %d != recorded %d", i, got.Seq, rec.Seq))
		case rec.Op != got.Op:
			diffs = append(diffs, fmt.Sprintf("event %d: op %s != recorded %s", i, got.Op, rec.Op))
		case rec.Path != got.Path:
			diffs = append(diffs, fmt.Sprintf("event %d: path %s != recorded %s", i, got.Path, rec.Path))
		case !int64PtrEqual(rec.Offset, got.Offset):
			diffs = append(diffs, fmt.Sprintf("event %d: offset mismatch", i))
		case !int64PtrEqual(rec.Size, got.Size):
			diffs = append(diffs, fmt.Sprintf("event %d: size mismatch", i))
		case rec.Outcome != got.Outcome:
			diffs = append(diffs, fmt.Sprintf("event %d: outcome %s != recorded %s", i, got.Outcome, rec.Outcome))
		}
	}

	return diffs
}

// CompareCounters verifies a fresh counter snapshot against a recorded
// one.
func CompareCounters(recorded, fresh map[string]int64) []string {
	var diffs []string
	for name, rec := range recorded {
		if got, ok := fresh[name]; !ok || got != rec {
			diffs = append(diffs, fmt.Sprintf("counter %s: %d != recorded %d", name, fresh[name], rec))
		}
	}
	for name := range fresh {
		if _, ok := recorded[name]; !ok {
			diffs = append(diffs, fmt.Sprintf("counter %s: not in recorded run", name))
		}
	}
	return diffs
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
