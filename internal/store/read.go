package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ReadRuns returns all recorded runs, oldest first. UUIDv7 run IDs break
// creation-time ties deterministically.
func (s *Store) ReadRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario, pass, created_at
		FROM runs
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var pass int
		if err := rows.Scan(&r.ID, &r.Scenario, &pass, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("read runs: %w", err)
		}
		r.Pass = pass != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent run of the named scenario, and
// whether one exists.
func (s *Store) LatestRun(ctx context.Context, scenario string) (Run, bool, error) {
	var r Run
	var pass int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, scenario, pass, created_at
		FROM runs
		WHERE scenario = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, scenario).Scan(&r.ID, &r.Scenario, &pass, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("latest run: %w", err)
	}
	r.Pass = pass != 0
	return r, true, nil
}

// ReadEvents returns a run's trace ordered by seq, for deterministic
// replay comparison.
func (s *Store) ReadEvents(ctx context.Context, runID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, op, path, offset, size, outcome
		FROM events
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.Seq, &ev.Op, &ev.Path, &ev.Offset, &ev.Size, &ev.Outcome); err != nil {
			return nil, fmt.Errorf("read events: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// ReadCounters returns a run's final counter snapshot.
func (s *Store) ReadCounters(ctx context.Context, runID string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, value
		FROM counters
		WHERE run_id = ?
		ORDER BY name ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read counters: %w", err)
	}
	defer rows.Close()

	counters := make(map[string]int64)
	for rows.Next() {
		var name string
		var value int64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("read counters: %w", err)
		}
		counters[name] = value
	}
	return counters, rows.Err()
}
