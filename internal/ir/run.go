package ir

// Hook stages as recorded in the journal.
const (
	StageInit = "init"
	StageFini = "fini"
)

// RunRecord is the journal entry for one simulated initialize/finalize cycle.
//
// Table holds the sorted order on success and the cycle path on a cycle.
// Results use the engine's Result string forms ("success", "cycle", "failed",
// "allocation_failure"). FinalizeResult is empty when finalization was
// skipped or not permitted.
type RunRecord struct {
	ID             string     `json:"id"`
	Label          string     `json:"label,omitempty"`
	ManifestHash   string     `json:"manifest_hash"`
	InitResult     string     `json:"init_result"`
	InitCursor     int        `json:"init_cursor"`
	FinalizeResult string     `json:"finalize_result,omitempty"`
	FinalizeCursor int        `json:"finalize_cursor"`
	Table          []string   `json:"table"`
	Calls          []HookCall `json:"calls"`
}

// Finalized reports whether finalization was attempted.
func (r *RunRecord) Finalized() bool {
	return r.FinalizeResult != ""
}

// HookCall is one hook invocation, ordered by Seq.
type HookCall struct {
	Seq    int64  `json:"seq"`
	Stage  string `json:"stage"`
	Module string `json:"module"`
	Hook   string `json:"hook"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// CallsIn returns the hook calls of one stage in sequence order.
func (r *RunRecord) CallsIn(stage string) []HookCall {
	var out []HookCall
	for _, c := range r.Calls {
		if c.Stage == stage {
			out = append(out, c)
		}
	}
	return out
}
