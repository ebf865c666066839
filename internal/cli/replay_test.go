package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayCommand_MatchesRecordedRun(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "write_and_sync.yaml", passingScenario)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	_, err := executeCommand("run", dir, "--db", dbPath)
	require.NoError(t, err)

	out, err := executeCommand("replay", dir, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ write_and_sync")
	assert.Contains(t, out, "All scenarios verified deterministic")
}

func TestReplayCommand_NoRecordedRunExitsOne(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "write_and_sync.yaml", passingScenario)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	// Open the database without recording anything
	_, err := executeCommand("trace", "--db", dbPath)
	require.NoError(t, err)

	out, err := executeCommand("replay", dir, "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "no recorded run for scenario")
}

func TestReplayCommand_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "write_and_sync.yaml", passingScenario)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	_, err := executeCommand("run", dir, "--db", dbPath)
	require.NoError(t, err)

	out, err := executeCommand("replay", dir, "--db", dbPath, "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestReplayCommand_RequiresDB(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "write_and_sync.yaml", passingScenario)

	_, err := executeCommand("replay", dir)
	require.Error(t, err)
}

func TestReplayCommand_FailingScenarioStillDeterministic(t *testing.T) {
	// A scenario that fails its assertions still replays identically;
	// replay checks determinism, not pass/fail.
	dir := t.TempDir()
	writeScenario(t, dir, "wrong_expectation.yaml", failingScenario)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	_, err := executeCommand("run", dir, "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := executeCommand("replay", dir, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ wrong_expectation")
}
