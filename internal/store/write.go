package store

import (
	"context"
	"fmt"
)

// Run is one recorded scenario execution.
type Run struct {
	ID        string
	Scenario  string
	Pass      bool
	CreatedAt string
}

// Event is one operation in a run's trace. Offset and Size are nil for
// operations they do not apply to (open, sync, delete, ...).
type Event struct {
	Seq     int64
	Op      string
	Path    string
	Offset  *int64
	Size    *int64
	Outcome string
}

// WriteRun records a run with its full trace and final counter snapshot
// in one transaction. A run is written exactly once; rewriting an
// existing run ID is an error.
func (s *Store) WriteRun(ctx context.Context, run Run, events []Event, counters map[string]int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	pass := 0
	if run.Pass {
		pass = 1
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, pass)
		VALUES (?, ?, ?)
	`, run.ID, run.Scenario, pass); err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	for _, ev := range events {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO events (run_id, seq, op, path, offset, size, outcome)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID, ev.Seq, ev.Op, ev.Path, ev.Offset, ev.Size, ev.Outcome); err != nil {
			return fmt.Errorf("write event seq %d: %w", ev.Seq, err)
		}
	}

	for name, value := range counters {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO counters (run_id, name, value)
			VALUES (?, ?, ?)
		`, run.ID, name, value); err != nil {
			return fmt.Errorf("write counter %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}
