package engine

import "fmt"

// Run invokes init hooks in table order, starting at the cursor.
//
// For each module with an init hook the state is set to Initializing, the
// hook is called, and on success the state becomes Initialized and the
// cursor advances. A module without an init hook just advances the cursor.
//
// On the first failing hook the result becomes Failed and the cursor is left
// on the failing module. Modules before it stay Initialized; modules after it
// are not touched.
func (h *Handle) Run() error {
	if h.poisoned {
		return ErrHandleUnusable
	}
	if h.result != Success || h.table == nil {
		return fmt.Errorf("%w: run requires a successful sort (result=%s)", ErrInvalidHandle, h.result)
	}

	h.stage = StageRun
	h.log.Debug("initializing modules", "count", len(h.table), "from", h.cursor)

	for h.cursor < len(h.table) {
		d := h.At(h.cursor)
		if d.init != nil {
			d.state = Initializing
			if err := d.init(); err != nil {
				h.result = Failed
				h.err = &HookError{Stage: StageRun, Module: d.name, Index: h.cursor, Err: err}
				h.log.Error("module initialization failed",
					"module", d.name,
					"index", h.cursor,
					"error", err,
				)
				return h.err
			}
			d.state = Initialized
			h.log.Debug("module initialized", "module", d.name, "index", h.cursor)
		}
		h.cursor++
	}

	return nil
}
