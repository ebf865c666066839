package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/testvfs/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - dump a specific run's trace
}

// RunListing summarizes recorded runs for the list view.
type RunListing struct {
	Runs  []store.Run `json:"runs"`
	Total int         `json:"total"`
}

// RunTrace holds a single run's full trace and counter snapshot.
type RunTrace struct {
	Run      store.Run        `json:"run"`
	Events   []store.Event    `json:"events"`
	Counters map[string]int64 `json:"counters"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded runs",
		Long: `Inspect runs recorded in the trace database.

Without --run, lists all recorded runs oldest first. With --run, dumps
that run's operation trace in seq order plus its final counter snapshot.

Examples:
  testvfs trace --db ./runs.db
  testvfs trace --db ./runs.db --run 0190a6e2-...
  testvfs trace --db ./runs.db --run 0190a6e2-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "dump the trace of a specific run")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		return listRuns(ctx, st, opts, cmd)
	}
	return dumpRun(ctx, st, opts, cmd)
}

func listRuns(ctx context.Context, st *store.Store, opts *TraceOptions, cmd *cobra.Command) error {
	runs, err := st.ReadRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}

	listing := RunListing{Runs: runs, Total: len(runs)}

	if opts.Format == "json" {
		if listing.Runs == nil {
			listing.Runs = []store.Run{}
		}
		return encodeIndented(cmd, CLIResponse{Status: "ok", Data: listing})
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	for _, run := range runs {
		status := "✓"
		if !run.Pass {
			status = "✗"
		}
		fmt.Fprintf(w, "%s %s  %s  %s\n", status, run.ID, run.Scenario, run.CreatedAt)
	}
	fmt.Fprintf(w, "\n%d run(s)\n", len(runs))
	return nil
}

func dumpRun(ctx context.Context, st *store.Store, opts *TraceOptions, cmd *cobra.Command) error {
	runs, err := st.ReadRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}

	var run store.Run
	found := false
	for _, r := range runs {
		if r.ID == opts.RunID {
			run = r
			found = true
			break
		}
	}
	if !found {
		return NewExitError(ExitCommandError, fmt.Sprintf("run %s not found", opts.RunID))
	}

	events, err := st.ReadEvents(ctx, run.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}
	counters, err := st.ReadCounters(ctx, run.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read counters", err)
	}

	trace := RunTrace{Run: run, Events: events, Counters: counters}

	if opts.Format == "json" {
		return encodeIndented(cmd, CLIResponse{Status: "ok", Data: trace})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s (%s)\n", run.ID, run.Scenario)
	fmt.Fprintln(w)

	for _, ev := range events {
		line := fmt.Sprintf("  [%d] %s %s", ev.Seq, ev.Op, ev.Path)
		if ev.Offset != nil {
			line += fmt.Sprintf(" offset=%d", *ev.Offset)
		}
		if ev.Size != nil {
			line += fmt.Sprintf(" size=%d", *ev.Size)
		}
		fmt.Fprintf(w, "%s -> %s\n", line, ev.Outcome)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Counters:")
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s = %d\n", name, counters[name])
	}

	return nil
}

func encodeIndented(cmd *cobra.Command, response CLIResponse) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}
