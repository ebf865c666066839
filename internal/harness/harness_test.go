package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func TestRun_CleanFlowPasses(t *testing.T) {
	scenario := &Scenario{
		Name: "clean",
		Flow: []FlowStep{
			{Op: OpOpen, Path: "main.db", Create: true},
			{Op: OpWrite, Path: "main.db", Offset: ptr(0), Data: "hello"},
			{Op: OpRead, Path: "main.db", Offset: ptr(0), Size: ptr(5), Expect: &ExpectClause{Data: "hello"}},
			{Op: OpSync, Path: "main.db", Full: true},
			{Op: OpClose, Path: "main.db"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Trace, 5)
	assert.Equal(t, int64(1), result.Counters["sync_count"])
	assert.Equal(t, int64(1), result.Counters["fullsync_count"])
	assert.Equal(t, int64(0), result.Counters["open_file_count"])
}

func TestRun_TraceSeqIsMonotonic(t *testing.T) {
	scenario := &Scenario{
		Name: "seq",
		Flow: []FlowStep{
			{Op: OpOpen, Path: "main.db", Create: true},
			{Op: OpSync, Path: "main.db"},
			{Op: OpClose, Path: "main.db"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	for i, ev := range result.Trace {
		assert.Equal(t, int64(i+1), ev.Seq)
	}
}

func TestRun_ExpectedFaultPasses(t *testing.T) {
	scenario := &Scenario{
		Name:  "diskfull",
		Setup: map[string]int64{"diskfull_pending": 1},
		Flow: []FlowStep{
			{Op: OpOpen, Path: "main.db", Create: true},
			{Op: OpWrite, Path: "main.db", Offset: ptr(0), Data: "x", Expect: &ExpectClause{Error: "disk_full"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "disk_full", result.Trace[1].Outcome)
	assert.Equal(t, int64(1), result.Counters["diskfull"])
}

func TestRun_UnexpectedFaultFails(t *testing.T) {
	scenario := &Scenario{
		Name:  "surprise",
		Setup: map[string]int64{"io_error_pending": 1},
		Flow: []FlowStep{
			{Op: OpOpen, Path: "main.db", Create: true},
			{Op: OpWrite, Path: "main.db", Offset: ptr(0), Data: "x"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "expected outcome ok, got io_error")
}

func TestRun_ExpectedSuccessThatFailsToFail(t *testing.T) {
	scenario := &Scenario{
		Name: "no_fault",
		Flow: []FlowStep{
			{Op: OpOpen, Path: "main.db", Create: true},
			{Op: OpWrite, Path: "main.db", Offset: ptr(0), Data: "x", Expect: &ExpectClause{Error: "io_error"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass, "an expected fault that does not fire must fail the scenario")
}

func TestRun_OperationOnUnopenedFileIsScenarioError(t *testing.T) {
	scenario := &Scenario{
		Name: "bad_flow",
		Flow: []FlowStep{
			{Op: OpWrite, Path: "main.db", Offset: ptr(0), Data: "x"},
		},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not open")
}

func TestRun_ExistsAndDeleteFlow(t *testing.T) {
	no := false
	yes := true
	scenario := &Scenario{
		Name: "lifecycle",
		Flow: []FlowStep{
			{Op: OpExists, Path: "main.db", Expect: &ExpectClause{Exists: &no}},
			{Op: OpOpen, Path: "main.db", Create: true},
			{Op: OpClose, Path: "main.db"},
			{Op: OpExists, Path: "main.db", Expect: &ExpectClause{Exists: &yes}},
			{Op: OpDelete, Path: "main.db"},
			{Op: OpDelete, Path: "main.db", Expect: &ExpectClause{Error: "not_found"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_LockFlow(t *testing.T) {
	yes := true
	scenario := &Scenario{
		Name: "locks",
		Flow: []FlowStep{
			{Op: OpOpen, Path: "main.db", Create: true},
			{Op: OpLock, Path: "main.db", Level: "shared", Expect: &ExpectClause{Acquired: &yes}},
			{Op: OpLock, Path: "main.db", Level: "reserved", Expect: &ExpectClause{Acquired: &yes}},
			{Op: OpUnlock, Path: "main.db", Level: "none"},
			{Op: OpClose, Path: "main.db"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_SetupPresetsCounters(t *testing.T) {
	scenario := &Scenario{
		Name:  "preset",
		Setup: map[string]int64{"current_time": 1700000000},
		Flow: []FlowStep{
			{Op: OpOpen, Path: "main.db", Create: true},
			{Op: OpClose, Path: "main.db"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), result.Counters["current_time"])
}

func TestRun_AssertionFailureFailsResult(t *testing.T) {
	scenario := &Scenario{
		Name: "assert_fail",
		Flow: []FlowStep{
			{Op: OpOpen, Path: "main.db", Create: true},
			{Op: OpClose, Path: "main.db"},
		},
		Assertions: []Assertion{
			{Type: AssertCounterEquals, Counter: "sync_count", Value: 5},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "sync_count")
}

func TestRun_IsDeterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/ioerr_countdown.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, first.Counters, second.Counters)
	assert.Equal(t, first.Pass, second.Pass)
}
