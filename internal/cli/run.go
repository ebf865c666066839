package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/testvfs/internal/harness"
	"github.com/roach88/testvfs/internal/store"
	"github.com/roach88/testvfs/internal/testutil"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs testutil.RunIDGenerator
}

// ScenarioResult holds the outcome of one scenario for CLI output.
type ScenarioResult struct {
	Scenario string   `json:"scenario"`
	File     string   `json:"file"`
	Pass     bool     `json:"pass"`
	Events   int      `json:"events"`
	Errors   []string `json:"errors,omitempty"`
	RunID    string   `json:"run_id,omitempty"`
}

// RunSummary holds the overall run command result.
type RunSummary struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Total     int              `json:"total"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario-file-or-dir>...",
		Short: "Run fault-injection scenarios",
		Long: `Run fault-injection scenarios against a fresh instrumented filesystem.

Each scenario executes in its own temp directory with its own counter
state, so scenarios never interfere with each other and repeated runs
produce identical traces. With --db, every run is recorded (trace plus
final counter snapshot) for later replay verification.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (scenario file not found, malformed YAML, etc.)

Examples:
  testvfs run ./scenarios
  testvfs run ./scenarios/diskfull_write.yaml --db ./runs.db
  testvfs run ./scenarios --format json --verbose`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record runs to this SQLite database")

	return cmd
}

func runScenarios(opts *RunOptions, paths []string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	files, err := discoverScenarioFiles(paths)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to discover scenarios", err)
	}

	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
	}

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = testutil.UUIDv7Generator{}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	summary := RunSummary{Scenarios: make([]ScenarioResult, 0, len(files))}
	for _, file := range files {
		scenario, err := harness.LoadScenario(file)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load %s", file), err)
		}

		logger.Info("running scenario", "scenario", scenario.Name, "file", file)
		result, err := harness.RunWithLogger(scenario, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("scenario %s aborted", scenario.Name), err)
		}

		sr := ScenarioResult{
			Scenario: scenario.Name,
			File:     file,
			Pass:     result.Pass,
			Events:   len(result.Trace),
			Errors:   result.Errors,
		}

		if st != nil {
			sr.RunID = runIDs.Generate()
			run := store.Run{ID: sr.RunID, Scenario: scenario.Name, Pass: result.Pass}
			if err := st.WriteRun(ctx, run, harness.ToStoreEvents(result.Trace), result.Counters); err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("failed to record run for %s", scenario.Name), err)
			}
		}

		summary.Scenarios = append(summary.Scenarios, sr)
		summary.Total++
		if result.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}

	if opts.Format == "json" {
		return outputRunJSON(cmd, summary)
	}
	return outputRunText(cmd, summary, opts.Verbose)
}

func outputRunJSON(cmd *cobra.Command, summary RunSummary) error {
	formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}

	if summary.Failed > 0 {
		if err := formatter.Error("E_SCENARIO", fmt.Sprintf("%d scenario(s) failed", summary.Failed), summary); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", summary.Failed))
	}
	return formatter.Success(summary)
}

func outputRunText(cmd *cobra.Command, summary RunSummary, verbose bool) error {
	w := cmd.OutOrStdout()

	for _, sr := range summary.Scenarios {
		status := "✓"
		if !sr.Pass {
			status = "✗"
		}
		fmt.Fprintf(w, "%s %s (%d events)\n", status, sr.Scenario, sr.Events)
		if sr.RunID != "" && verbose {
			fmt.Fprintf(w, "  recorded as %s\n", sr.RunID)
		}
		for _, msg := range sr.Errors {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d scenario(s): %d passed, %d failed\n", summary.Total, summary.Passed, summary.Failed)

	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", summary.Failed))
	}
	return nil
}
