package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_SyncCounts(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/sync_counts.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunWithGolden_DiskfullWrite(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/diskfull_write.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestTraceSnapshot_CanonicalMapShape(t *testing.T) {
	snap := &TraceSnapshot{
		ScenarioName: "s",
		Trace: []TraceEvent{
			{Seq: 1, Op: "open", Path: "main.db", Outcome: "ok"},
			{Seq: 2, Op: "write", Path: "main.db", Offset: ptr(0), Size: ptr(5), Outcome: "ok"},
		},
		Counters: map[string]int64{"sync_count": 0},
	}

	data, err := MarshalCanonical(snap.toCanonicalMap())
	require.NoError(t, err)
	assert.Equal(t,
		`{"counters":{"sync_count":0},"scenario_name":"s",`+
			`"trace":[{"op":"open","outcome":"ok","path":"main.db","seq":1},`+
			`{"offset":0,"op":"write","outcome":"ok","path":"main.db","seq":2,"size":5}]}`,
		string(data))
}
