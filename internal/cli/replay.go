package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/testvfs/internal/harness"
	"github.com/roach88/testvfs/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayScenarioResult holds the replay result for a single scenario.
type ReplayScenarioResult struct {
	Scenario      string   `json:"scenario"`
	RunID         string   `json:"run_id,omitempty"`
	Recorded      bool     `json:"recorded"`
	Deterministic bool     `json:"deterministic"`
	Diffs         []string `json:"diffs,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Scenarios        []ReplayScenarioResult `json:"scenarios"`
	Total            int                    `json:"total"`
	AllDeterministic bool                   `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <scenario-file-or-dir>...",
		Short: "Re-run scenarios and verify recorded traces",
		Long: `Re-run scenarios and compare against their most recent recorded runs.

Each scenario executes fresh and its trace and final counter snapshot
are compared event-for-event against the latest run recorded in the
database. Any divergence means the scenario is non-deterministic or its
environment changed.

Exit codes:
  0 - All replays match their recorded runs
  1 - Divergence detected, or a scenario has no recorded run
  2 - Command error (database not found, etc.)

Examples:
  testvfs replay ./scenarios --db ./runs.db
  testvfs replay ./scenarios/diskfull_write.yaml --db ./runs.db --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, paths []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	files, err := discoverScenarioFiles(paths)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to discover scenarios", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	result := ReplayResult{
		Scenarios:        make([]ReplayScenarioResult, 0, len(files)),
		AllDeterministic: true,
	}

	for _, file := range files {
		scenario, err := harness.LoadScenario(file)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load %s", file), err)
		}

		sr, err := replayScenario(ctx, st, scenario)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay %s", scenario.Name), err)
		}

		result.Scenarios = append(result.Scenarios, sr)
		result.Total++
		if !sr.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result)
}

// replayScenario re-runs one scenario and diffs it against its latest
// recorded run.
func replayScenario(ctx context.Context, st *store.Store, scenario *harness.Scenario) (ReplayScenarioResult, error) {
	run, found, err := st.LatestRun(ctx, scenario.Name)
	if err != nil {
		return ReplayScenarioResult{}, err
	}
	if !found {
		return ReplayScenarioResult{
			Scenario: scenario.Name,
			Recorded: false,
			Diffs:    []string{"no recorded run for scenario"},
		}, nil
	}

	recorded, err := st.ReadEvents(ctx, run.ID)
	if err != nil {
		return ReplayScenarioResult{}, err
	}
	recordedCounters, err := st.ReadCounters(ctx, run.ID)
	if err != nil {
		return ReplayScenarioResult{}, err
	}

	fresh, err := harness.Run(scenario)
	if err != nil {
		return ReplayScenarioResult{}, err
	}

	diffs := harness.Compare(recorded, fresh.Trace)
	diffs = append(diffs, harness.CompareCounters(recordedCounters, fresh.Counters)...)

	return ReplayScenarioResult{
		Scenario:      scenario.Name,
		RunID:         run.ID,
		Recorded:      true,
		Deterministic: len(diffs) == 0,
		Diffs:         diffs,
	}, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DETERMINISM",
			Message: "determinism verification failed",
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d scenario(s)\n", result.Total)
	fmt.Fprintln(w)

	for _, sr := range result.Scenarios {
		status := "✓"
		if !sr.Deterministic {
			status = "✗"
		}

		fmt.Fprintf(w, "%s %s\n", status, sr.Scenario)
		if sr.RunID != "" {
			fmt.Fprintf(w, "  Recorded run: %s\n", sr.RunID)
		}
		for _, diff := range sr.Diffs {
			fmt.Fprintf(w, "  %s\n", diff)
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All scenarios verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	return NewExitError(ExitFailure, "determinism verification failed")
}
