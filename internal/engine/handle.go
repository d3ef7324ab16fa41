package engine

import "log/slog"

// DefaultTableLimit is the largest registry a Handle will size a table for
// unless WithTableLimit says otherwise.
const DefaultTableLimit = 1 << 20

// Option configures a Handle.
type Option func(*Handle)

// WithLogger sets the logger used for phase diagnostics.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Handle) {
		if l != nil {
			h.log = l
		}
	}
}

// WithTableLimit caps the number of modules a table may hold. Sorting a
// larger registry yields AllocationFailure without touching any module.
// Use WithTableLimit(0) to reproduce the allocation failure path in tests.
func WithTableLimit(n int) Option {
	return func(h *Handle) {
		h.limit = n
	}
}

// Handle carries the result, the ordered table and the progress cursor
// through Sort, Run and Finalize.
//
// INVARIANTS:
//   - 0 <= cursor <= len(table)
//   - table holds registry indices; the registry owns the descriptors
//   - the table is released exactly once, by a fully successful Finalize
type Handle struct {
	reg      *Registry
	result   Result
	table    []int
	cursor   int
	stage    Stage
	err      error
	poisoned bool

	log   *slog.Logger
	limit int
}

// New returns an empty handle ready for Sort.
func New(opts ...Option) *Handle {
	h := &Handle{
		log:   slog.Default(),
		limit: DefaultTableLimit,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Result returns the outcome of the most recent phase.
func (h *Handle) Result() Result { return h.result }

// Cursor returns the progress marker.
//
// After a successful Run it equals Len(). After a Cycle, table[0:Cursor()] is
// the cycle path. After Failed, At(Cursor()) is the module whose hook failed.
func (h *Handle) Cursor() int { return h.cursor }

// Stage returns the phase the handle last worked in.
func (h *Handle) Stage() Stage { return h.stage }

// Len returns the number of table entries.
func (h *Handle) Len() int { return len(h.table) }

// At returns the descriptor at table index i.
func (h *Handle) At(i int) *Descriptor {
	return h.reg.Module(h.table[i])
}

// Names returns the module names in table order.
func (h *Handle) Names() []string {
	names := make([]string, len(h.table))
	for i, idx := range h.table {
		names[i] = h.reg.modules[idx].name
	}
	return names
}

// CyclePath returns the recorded cycle path, or nil unless Result is Cycle.
func (h *Handle) CyclePath() []string {
	if h.result != Cycle {
		return nil
	}
	return h.Names()[:h.cursor]
}

// Failing returns the module whose hook failed, or nil unless Result is Failed.
func (h *Handle) Failing() *Descriptor {
	if h.result != Failed || h.cursor >= len(h.table) {
		return nil
	}
	return h.At(h.cursor)
}

// Err returns the typed error describing a non-Success result, or nil.
func (h *Handle) Err() error {
	if h.result == Success {
		return nil
	}
	return h.err
}

// Reusable reports whether the handle can Sort again: it holds no table
// and finalization has never failed on it.
func (h *Handle) Reusable() bool {
	return !h.poisoned && h.table == nil
}

// reset releases the table and returns the handle to its empty state.
// Options survive the reset.
func (h *Handle) reset() {
	h.reg = nil
	h.result = Success
	h.table = nil
	h.cursor = 0
	h.stage = StageNone
	h.err = nil
}
