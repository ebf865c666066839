// Package store provides SQLite-backed storage for recorded harness runs.
//
// The store is an append-only trace log:
//   - Runs: one row per executed scenario (UUIDv7 id, scenario name, result)
//   - Events: the per-run operation trace, ordered by logical seq
//   - Counters: the final instrumentation counter snapshot of each run
//
// All ordering uses the seq column (logical clock), never timestamps, so
// a recorded trace compares byte-for-byte against a fresh re-run of the
// same scenario.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: events and counters always belong to a run
package store
