package engine

// frame is one level of the explicit traversal stack: a module and the
// position of the next import to visit.
type frame struct {
	module int
	next   int
}

// Sort builds a fresh Handle and sorts reg into it.
func Sort(reg *Registry, opts ...Option) *Handle {
	h := New(opts...)
	_ = h.Sort(reg)
	return h
}

// Sort orders reg so that every import precedes its importer.
//
// Roots are visited in registry order and imports in declaration order, so
// the same registry always yields the same table (or the same cycle path).
// Each module is appended after all of its imports and marked Initialized;
// that mark is provisional until Run invokes its hook.
//
// The returned error mirrors Err(): *AllocationError, *CycleError, or one of
// the handle misuse errors. Misuse leaves the handle untouched.
func (h *Handle) Sort(reg *Registry) error {
	if h.poisoned {
		return ErrHandleUnusable
	}
	if h.table != nil {
		return ErrHandleInUse
	}

	h.reset()
	h.reg = reg
	h.stage = StageSort

	n := reg.Len()
	if n > h.limit {
		h.result = AllocationFailure
		h.err = &AllocationError{Size: n, Limit: h.limit}
		h.log.Error("module table allocation failed", "modules", n, "limit", h.limit)
		return h.err
	}
	h.table = make([]int, 0, n)

	h.log.Debug("sorting modules", "modules", n)

	// Only modules that are Initializing sit on the stack, so depth <= n.
	stack := make([]frame, 0, n)
	for root := 0; root < n; root++ {
		if !h.visit(root, stack) {
			h.result = Cycle
			h.cursor = len(h.table)
			h.err = &CycleError{Path: h.CyclePath()}
			h.log.Warn("import cycle detected", "path", h.CyclePath())
			return h.err
		}
	}

	h.result = Success
	h.cursor = 0
	h.log.Debug("modules sorted", "order", h.Names())
	return nil
}

// visit runs a post-order traversal from root. It returns false if a cycle
// was found, in which case the table has been rewritten to the cycle path.
func (h *Handle) visit(root int, stack []frame) bool {
	mods := h.reg.modules

	switch mods[root].state {
	case Initialized:
		return true
	case Initializing:
		h.recordCycle(root, stack[:0])
		return false
	}

	mods[root].state = Initializing
	stack = append(stack[:0], frame{module: root})

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		d := &mods[top.module]

		if top.next < len(d.imports) {
			dep := d.imports[top.next]
			top.next++

			switch mods[dep].state {
			case Uninitialized:
				mods[dep].state = Initializing
				stack = append(stack, frame{module: dep})
			case Initializing:
				h.recordCycle(dep, stack)
				return false
			}
			continue
		}

		h.table = append(h.table, top.module)
		d.state = Initialized
		stack = stack[:len(stack)-1]
	}

	return true
}

// recordCycle rewinds the table and writes the cycle path: the repeated
// module first, then each stack frame from the innermost outwards, stopping
// at the repeated module's own frame.
func (h *Handle) recordCycle(repeated int, stack []frame) {
	h.table = h.table[:0]
	h.table = append(h.table, repeated)
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].module == repeated {
			break
		}
		h.table = append(h.table, stack[i].module)
	}
}
