package harness

// TraceEvent is one executed operation in a scenario trace.
// Offset and Size are nil for operations they do not apply to.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Op      string `json:"op"`
	Path    string `json:"path"`
	Offset  *int64 `json:"offset,omitempty"`
	Size    *int64 `json:"size,omitempty"`
	Outcome string `json:"outcome"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every executed operation in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expect and assertion failures. Empty when Pass.
	Errors []string `json:"errors,omitempty"`

	// Counters is the final instrumentation counter snapshot.
	Counters map[string]int64 `json:"counters"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an executed operation to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
