// Package fault holds the instrumentation counters and fault-injection
// state for the test VFS.
//
// A State is a bag of process-wide test counters: how many times a file
// was synced, how many file handles are open, a simulated clock, and the
// pending/hit bookkeeping that drives simulated io-error and disk-full
// conditions. The VFS layer consults a State on every instrumented
// operation; test scenarios preset the state and assert on the counters
// afterwards.
//
// # Single-Threaded Model
//
// State performs unguarded integer mutation on purpose. Scenarios execute
// on a single goroutine (one flow, one State, one temp dir), so every
// mutation is ordered by program order and runs are reproducible. Sharing
// a State across goroutines is a data race; create one State per scenario
// instead.
//
// # Injection Semantics
//
// InjectIOError and InjectDiskFull implement the countdown discipline used
// by SQLite's os-layer test hooks: a test arms N-1 successful operations
// followed by a failure by setting the pending counter to N. Once an
// io-error has hit, the persist flag keeps every subsequent operation
// failing; the benign flag suppresses hardhit accounting for failures the
// caller is expected to tolerate.
package fault
