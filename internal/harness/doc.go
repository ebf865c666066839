// Package harness executes fault-injection scenarios against the
// instrumented VFS.
//
// The harness loads a scenario, arms the fault counters, runs a flow of
// file operations in a fresh temp directory, and validates the resulting
// trace and final counter state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	setup:                       # counter presets, applied before the flow
//	  diskfull_pending: 1
//	  io_error_persist: 0
//	flow:
//	  - op: open                 # open|close|write|read|sync|truncate|
//	    path: main.db            # delete|exists|access|lock|unlock
//	    create: true
//	  - op: write
//	    path: main.db
//	    offset: 0
//	    data: "hello"
//	    expect: {error: disk_full}
//	assertions:
//	  - {type: counter_equals, counter: diskfull, value: 1}
//	  - {type: trace_contains, op: write, path: main.db, outcome: disk_full}
//	  - {type: trace_count, op: write, count: 1}
//	  - {type: trace_order, ops: [open, write, close]}
//
// # Assertion Types
//
//   - counter_equals: a named instrumentation counter has an exact value
//   - trace_contains: an operation appears in the trace (subset match)
//   - trace_count: an operation appears exactly N times
//   - trace_order: operations appear in the given order, not necessarily
//     consecutively
//
// # Deterministic Execution
//
// Every scenario runs with a fresh fault state, a fresh temp directory
// and a logical seq clock stamping trace events, so the same scenario
// produces a byte-identical trace on every run. Golden snapshots use
// canonical JSON and are compared with goldie; replaying a scenario
// against a recorded run verifies determinism end to end.
package harness
