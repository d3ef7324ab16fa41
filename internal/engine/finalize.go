package engine

import "fmt"

// Finalize invokes fini hooks in strict reverse table order over the
// initialized prefix [0, cursor).
//
// The cursor moves down as each module is finalized. If a fini hook fails,
// the result becomes Failed, the cursor is left on the failing module and
// no lower module is finalized: it may still be depended upon by the module
// that failed. The table is kept for diagnostics and the handle refuses any
// further use.
//
// When every module down to index 0 has been finalized, the table is
// released and the handle is reset to its empty state. Finalizing an empty
// handle is a no-op.
func (h *Handle) Finalize() error {
	if h.poisoned {
		return ErrHandleUnusable
	}
	if h.result != Success && h.result != Failed {
		return fmt.Errorf("%w: finalize requires success or a failed run (result=%s)", ErrInvalidHandle, h.result)
	}

	h.stage = StageFinalize
	h.log.Debug("finalizing modules", "count", h.cursor)

	for h.cursor > 0 {
		i := h.cursor - 1
		d := h.At(i)
		if d.fini != nil {
			if err := d.fini(); err != nil {
				h.cursor = i
				h.result = Failed
				h.poisoned = true
				h.err = &HookError{Stage: StageFinalize, Module: d.name, Index: i, Err: err}
				h.log.Error("module finalization failed",
					"module", d.name,
					"index", i,
					"error", err,
				)
				return h.err
			}
			h.log.Debug("module finalized", "module", d.name, "index", i)
		}
		h.cursor = i
	}

	h.reset()
	return nil
}
