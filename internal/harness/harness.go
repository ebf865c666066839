package harness

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/testvfs/internal/fault"
	"github.com/roach88/testvfs/internal/lock"
	"github.com/roach88/testvfs/internal/testutil"
	"github.com/roach88/testvfs/internal/vfs"
)

// Harness executes one scenario against a fresh instrumented filesystem.
type Harness struct {
	state  *fault.State
	fsys   *vfs.OS
	clock  *testutil.SeqClock
	files  map[string]vfs.File
	logger *slog.Logger
}

// Run executes a scenario and returns its result.
//
// Each scenario runs in a fresh temp directory with a fresh fault state
// and a fresh seq clock, so repeated runs produce identical traces.
//
// Execution flow:
//  1. Create temp directory and fault state
//  2. Apply counter presets from setup
//  3. Execute flow steps, tracing every operation and checking expects
//  4. Snapshot final counters
//  5. Evaluate assertions
//
// Expect mismatches and assertion failures mark the result failed but do
// not abort the flow; scenario-structure problems (an op on a file the
// flow never opened, an unusable temp dir) abort with an error.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with step-level debug logging.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	dir, err := os.MkdirTemp("", "testvfs-scenario-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario dir: %w", err)
	}
	defer os.RemoveAll(dir)

	state := fault.NewState()
	for name, value := range scenario.Setup {
		if !state.Set(name, value) {
			return nil, fmt.Errorf("setup: unknown counter %q", name)
		}
	}

	h := &Harness{
		state:  state,
		fsys:   vfs.NewOS(dir, state),
		clock:  testutil.NewSeqClock(),
		files:  make(map[string]vfs.File),
		logger: logger,
	}

	result := NewResult()
	for i, step := range scenario.Flow {
		if err := h.executeStep(step, result); err != nil {
			return nil, fmt.Errorf("flow[%d] %s %s: %w", i, step.Op, step.Path, err)
		}
	}

	// Snapshot before cleanup so open_file_count reflects what the
	// scenario left open.
	result.Counters = state.Counters()

	for _, f := range h.files {
		f.Close()
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// executeStep runs one flow step, traces it, and checks its expect
// clause. The returned error reports scenario-structure problems only;
// operation failures land in the trace and the result.
func (h *Harness) executeStep(step FlowStep, result *Result) error {
	outcome, checks, err := h.perform(step)
	if err != nil {
		return err
	}

	ev := TraceEvent{
		Seq:     h.clock.Next(),
		Op:      step.Op,
		Path:    step.Path,
		Offset:  step.Offset,
		Outcome: outcome,
	}
	if step.Op == OpWrite {
		size := int64(len(step.Data))
		ev.Size = &size
	} else if step.Op == OpRead || step.Op == OpTruncate {
		ev.Size = step.Size
	}
	result.AddTrace(ev)

	h.logger.Debug("step executed", "op", step.Op, "path", step.Path, "outcome", outcome)

	expected := vfs.OutcomeOK
	if step.Expect != nil {
		if step.Expect.Error != "" {
			expected = step.Expect.Error
		} else if step.Op == OpLock && step.Expect.Acquired != nil && !*step.Expect.Acquired {
			// A lock expected to miss traces as busy.
			expected = vfs.OutcomeBusy
		}
	}
	if outcome != expected {
		result.AddError(fmt.Sprintf("step %d (%s %s): expected outcome %s, got %s",
			ev.Seq, step.Op, step.Path, expected, outcome))
	}
	for _, msg := range checks {
		result.AddError(fmt.Sprintf("step %d (%s %s): %s", ev.Seq, step.Op, step.Path, msg))
	}

	return nil
}

// perform executes the operation itself and returns its trace outcome
// plus any value-level expect mismatches (read payload, exists answer,
// lock acquisition).
func (h *Harness) perform(step FlowStep) (outcome string, checks []string, err error) {
	switch step.Op {
	case OpOpen:
		f, openErr := h.fsys.Open(step.Path, vfs.OpenOptions{
			Create:    step.Create,
			CreateNew: step.CreateNew,
			ReadOnly:  step.ReadOnly,
			MainDB:    true,
		})
		if openErr != nil {
			return vfs.Kind(openErr), nil, nil
		}
		if old, ok := h.files[step.Path]; ok {
			old.Close()
		}
		h.files[step.Path] = f
		return vfs.OutcomeOK, nil, nil

	case OpClose:
		f, ok := h.files[step.Path]
		if !ok {
			return "", nil, fmt.Errorf("file not open")
		}
		delete(h.files, step.Path)
		return vfs.Kind(f.Close()), nil, nil

	case OpWrite:
		f, ok := h.files[step.Path]
		if !ok {
			return "", nil, fmt.Errorf("file not open")
		}
		_, writeErr := f.WriteAt([]byte(step.Data), *step.Offset)
		return vfs.Kind(writeErr), nil, nil

	case OpRead:
		f, ok := h.files[step.Path]
		if !ok {
			return "", nil, fmt.Errorf("file not open")
		}
		buf := make([]byte, *step.Size)
		n, readErr := f.ReadAt(buf, *step.Offset)
		if readErr != nil {
			return vfs.Kind(readErr), nil, nil
		}
		if step.Expect != nil && step.Expect.Data != "" && string(buf[:n]) != step.Expect.Data {
			checks = append(checks, fmt.Sprintf("expected data %q, got %q", step.Expect.Data, string(buf[:n])))
		}
		return vfs.OutcomeOK, checks, nil

	case OpSync:
		f, ok := h.files[step.Path]
		if !ok {
			return "", nil, fmt.Errorf("file not open")
		}
		return vfs.Kind(f.Sync(step.Full)), nil, nil

	case OpTruncate:
		f, ok := h.files[step.Path]
		if !ok {
			return "", nil, fmt.Errorf("file not open")
		}
		return vfs.Kind(f.Truncate(*step.Size)), nil, nil

	case OpDelete:
		return vfs.Kind(h.fsys.Delete(step.Path)), nil, nil

	case OpExists:
		exists, existsErr := h.fsys.Exists(step.Path)
		if existsErr != nil {
			return vfs.Kind(existsErr), nil, nil
		}
		if step.Expect != nil && step.Expect.Exists != nil && exists != *step.Expect.Exists {
			checks = append(checks, fmt.Sprintf("expected exists=%v, got %v", *step.Expect.Exists, exists))
		}
		return vfs.OutcomeOK, checks, nil

	case OpAccess:
		ok, accessErr := h.fsys.Access(step.Path, step.Write)
		if accessErr != nil {
			return vfs.Kind(accessErr), nil, nil
		}
		if step.Expect != nil && step.Expect.Exists != nil && ok != *step.Expect.Exists {
			checks = append(checks, fmt.Sprintf("expected access=%v, got %v", *step.Expect.Exists, ok))
		}
		return vfs.OutcomeOK, checks, nil

	case OpLock:
		f, ok := h.files[step.Path]
		if !ok {
			return "", nil, fmt.Errorf("file not open")
		}
		level, _ := lock.ParseLevel(step.Level)
		acquired, lockErr := f.Lock(level)
		if lockErr != nil {
			return "", nil, lockErr
		}
		if step.Expect != nil && step.Expect.Acquired != nil && acquired != *step.Expect.Acquired {
			checks = append(checks, fmt.Sprintf("expected acquired=%v, got %v", *step.Expect.Acquired, acquired))
		}
		if !acquired {
			return vfs.OutcomeBusy, checks, nil
		}
		return vfs.OutcomeOK, checks, nil

	case OpUnlock:
		f, ok := h.files[step.Path]
		if !ok {
			return "", nil, fmt.Errorf("file not open")
		}
		level, _ := lock.ParseLevel(step.Level)
		_, unlockErr := f.Unlock(level)
		if unlockErr != nil {
			return "", nil, unlockErr
		}
		return vfs.OutcomeOK, nil, nil

	default:
		return "", nil, fmt.Errorf("unknown op %q", step.Op)
	}
}
