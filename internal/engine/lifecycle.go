package engine

// InitializeAll sorts reg and, if the sort succeeds, runs every init hook in
// dependency order. The returned handle is always non-nil and carries the
// outcome; the error is the same value as the handle's Err().
func InitializeAll(reg *Registry, opts ...Option) (*Handle, error) {
	h := New(opts...)
	if err := h.Sort(reg); err != nil {
		return h, err
	}
	if err := h.Run(); err != nil {
		return h, err
	}
	return h, nil
}

// FinalizeAll tears down what InitializeAll brought up, in reverse order.
// A nil handle is a no-op.
func FinalizeAll(h *Handle) error {
	if h == nil {
		return nil
	}
	return h.Finalize()
}
