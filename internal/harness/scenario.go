package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/testvfs/internal/fault"
	"github.com/roach88/testvfs/internal/lock"
)

// Scenario defines one fault-injection test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Setup presets instrumentation counters by canonical name before
	// the flow runs (e.g. io_error_pending: 3).
	Setup map[string]int64 `yaml:"setup,omitempty"`

	// Flow is the sequence of file operations to execute.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and counter state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// FlowStep is one file operation in a scenario flow.
type FlowStep struct {
	// Op is the operation name: open, close, write, read, sync,
	// truncate, delete, exists, access, lock or unlock.
	Op string `yaml:"op"`

	// Path is the file the operation targets, relative to the
	// scenario's temp directory.
	Path string `yaml:"path"`

	// Offset applies to read and write.
	Offset *int64 `yaml:"offset,omitempty"`

	// Data is the payload for write, as a plain string.
	Data string `yaml:"data,omitempty"`

	// Size applies to read (bytes to read) and truncate (new length).
	Size *int64 `yaml:"size,omitempty"`

	// Create / CreateNew / ReadOnly apply to open.
	Create    bool `yaml:"create,omitempty"`
	CreateNew bool `yaml:"create_new,omitempty"`
	ReadOnly  bool `yaml:"read_only,omitempty"`

	// Full marks a sync as a full (metadata-inclusive) sync.
	Full bool `yaml:"full,omitempty"`

	// Level is the lock level for lock/unlock steps.
	Level string `yaml:"level,omitempty"`

	// Write marks an access check as a writability check.
	Write bool `yaml:"write,omitempty"`

	// Expect specifies the expected outcome. A nil Expect means the
	// step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause is the expected outcome of a flow step.
type ExpectClause struct {
	// Error is the expected outcome kind: io_error, disk_full,
	// not_found or busy. Empty means success.
	Error string `yaml:"error,omitempty"`

	// Data is the expected payload of a read.
	Data string `yaml:"data,omitempty"`

	// Exists is the expected answer of an exists or access step.
	Exists *bool `yaml:"exists,omitempty"`

	// Acquired is the expected answer of a lock step.
	Acquired *bool `yaml:"acquired,omitempty"`
}

// Assertion validates the trace or the final counter state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Counter / Value are used by counter_equals.
	Counter string `yaml:"counter,omitempty"`
	Value   int64  `yaml:"value,omitempty"`

	// Op / Path / Outcome are used by trace_contains and trace_count.
	// Empty fields match anything.
	Op      string `yaml:"op,omitempty"`
	Path    string `yaml:"path,omitempty"`
	Outcome string `yaml:"outcome,omitempty"`

	// Count is used by trace_count.
	Count int `yaml:"count,omitempty"`

	// Ops is the expected operation order for trace_order.
	Ops []string `yaml:"ops,omitempty"`
}

// Assertion type constants.
const (
	AssertCounterEquals = "counter_equals"
	AssertTraceContains = "trace_contains"
	AssertTraceCount    = "trace_count"
	AssertTraceOrder    = "trace_order"
)

// Operation name constants.
const (
	OpOpen     = "open"
	OpClose    = "close"
	OpWrite    = "write"
	OpRead     = "read"
	OpSync     = "sync"
	OpTruncate = "truncate"
	OpDelete   = "delete"
	OpExists   = "exists"
	OpAccess   = "access"
	OpLock     = "lock"
	OpUnlock   = "unlock"
)

var validOps = map[string]bool{
	OpOpen: true, OpClose: true, OpWrite: true, OpRead: true,
	OpSync: true, OpTruncate: true, OpDelete: true, OpExists: true,
	OpAccess: true, OpLock: true, OpUnlock: true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and referential consistency.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("missing required field: name")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("missing required field: flow")
	}

	probe := fault.NewState()
	for name := range s.Setup {
		if !probe.Set(name, 0) {
			return fmt.Errorf("setup: unknown counter %q", name)
		}
	}

	for i, step := range s.Flow {
		if !validOps[step.Op] {
			return fmt.Errorf("flow[%d]: unknown op %q", i, step.Op)
		}
		if step.Path == "" {
			return fmt.Errorf("flow[%d]: missing path", i)
		}
		switch step.Op {
		case OpWrite:
			if step.Offset == nil {
				return fmt.Errorf("flow[%d]: write requires offset", i)
			}
		case OpRead:
			if step.Offset == nil || step.Size == nil {
				return fmt.Errorf("flow[%d]: read requires offset and size", i)
			}
		case OpTruncate:
			if step.Size == nil {
				return fmt.Errorf("flow[%d]: truncate requires size", i)
			}
		case OpLock, OpUnlock:
			if _, ok := lock.ParseLevel(step.Level); !ok {
				return fmt.Errorf("flow[%d]: %s requires a valid level, got %q", i, step.Op, step.Level)
			}
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertCounterEquals:
			if !probe.Set(a.Counter, 0) {
				return fmt.Errorf("assertions[%d]: unknown counter %q", i, a.Counter)
			}
		case AssertTraceContains:
			if a.Op == "" {
				return fmt.Errorf("assertions[%d]: trace_contains requires op", i)
			}
		case AssertTraceCount:
			if a.Op == "" {
				return fmt.Errorf("assertions[%d]: trace_count requires op", i)
			}
		case AssertTraceOrder:
			if len(a.Ops) < 2 {
				return fmt.Errorf("assertions[%d]: trace_order requires at least two ops", i)
			}
		default:
			return fmt.Errorf("assertions[%d]: unknown type %q", i, a.Type)
		}
	}

	return nil
}
