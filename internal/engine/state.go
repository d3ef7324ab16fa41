package engine

// State is the per-module lifecycle state.
//
// A module moves Uninitialized -> Initializing -> Initialized. Reaching a
// module that is still Initializing during Sort means an import cycle; the
// module stays Initializing because the attempt is abandoned, not continued.
type State int

const (
	Uninitialized State = iota
	Initializing
	Initialized
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Initialized:
		return "initialized"
	default:
		return "unknown"
	}
}

// Result is the handle-level outcome of the most recent phase.
type Result int

const (
	// Success means the last phase completed. A freshly reset handle also
	// reports Success.
	Success Result = iota

	// Cycle means Sort found an import cycle. table[0:cursor] is the path.
	Cycle

	// Failed means an init or fini hook returned an error.
	// table[cursor] is the module whose hook failed.
	Failed

	// AllocationFailure means the table could not be sized for the registry.
	AllocationFailure
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Cycle:
		return "cycle"
	case Failed:
		return "failed"
	case AllocationFailure:
		return "allocation_failure"
	default:
		return "unknown"
	}
}

// ParseResult converts the String form of a Result back to its value.
func ParseResult(s string) (Result, bool) {
	for _, r := range []Result{Success, Cycle, Failed, AllocationFailure} {
		if r.String() == s {
			return r, true
		}
	}
	return 0, false
}

// Stage names the phase a handle last worked in.
type Stage int

const (
	StageNone Stage = iota
	StageSort
	StageRun
	StageFinalize
)

func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageSort:
		return "sort"
	case StageRun:
		return "init"
	case StageFinalize:
		return "fini"
	default:
		return "unknown"
	}
}
