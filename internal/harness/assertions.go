package harness

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/multierr"

	"github.com/roach88/modinit/internal/ir"
)

// AssertionError is returned when an expectation does not hold.
// It carries the full call trace to help debug the failure.
type AssertionError struct {
	Field    string // expect field, e.g. "init_cursor"
	Expected string
	Actual   string
	Calls    []ir.HookCall
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Expectation failed: %s\n", e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nHook calls:\n")
	if len(e.Calls) == 0 {
		fmt.Fprintf(&buf, "  (none)\n")
	}
	for _, c := range e.Calls {
		fmt.Fprintf(&buf, "  [%d] %s\n", c.Seq, formatCall(c))
	}
	return buf.String()
}

// formatCall renders a call the way scenarios spell it: "init:vm", or
// "init:vm!" when the hook failed.
func formatCall(c ir.HookCall) string {
	s := c.Stage + ":" + c.Module
	if !c.OK {
		s += "!"
	}
	return s
}

// FormatCalls renders every call with formatCall.
func FormatCalls(calls []ir.HookCall) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = formatCall(c)
	}
	return out
}

// CheckExpect compares a run record against e. Every mismatch is
// reported; use multierr.Errors to split the result.
func CheckExpect(r *ir.RunRecord, e Expect) error {
	var err error
	mismatch := func(field, expected, actual string) {
		err = multierr.Append(err, &AssertionError{
			Field:    field,
			Expected: expected,
			Actual:   actual,
			Calls:    r.Calls,
		})
	}

	if r.InitResult != e.Init {
		mismatch("init", e.Init, r.InitResult)
	}
	if e.InitCursor != nil && r.InitCursor != *e.InitCursor {
		mismatch("init_cursor", fmt.Sprint(*e.InitCursor), fmt.Sprint(r.InitCursor))
	}
	if len(e.Order) > 0 && !slices.Equal(r.Table, e.Order) {
		mismatch("order", fmt.Sprint(e.Order), fmt.Sprint(r.Table))
	}
	if len(e.Cycle) > 0 && !slices.Equal(r.Table, e.Cycle) {
		mismatch("cycle", fmt.Sprint(e.Cycle), fmt.Sprint(r.Table))
	}

	switch e.Finalize {
	case "":
	case FinalizeSkipped:
		if r.Finalized() {
			mismatch("finalize", FinalizeSkipped, r.FinalizeResult)
		}
	default:
		actual := r.FinalizeResult
		if !r.Finalized() {
			actual = FinalizeSkipped
		}
		if actual != e.Finalize {
			mismatch("finalize", e.Finalize, actual)
		}
	}
	if e.FinalizeCursor != nil && r.FinalizeCursor != *e.FinalizeCursor {
		mismatch("finalize_cursor", fmt.Sprint(*e.FinalizeCursor), fmt.Sprint(r.FinalizeCursor))
	}

	if e.Calls != nil {
		if actual := FormatCalls(r.Calls); !slices.Equal(actual, e.Calls) {
			mismatch("calls", fmt.Sprint(e.Calls), fmt.Sprint(actual))
		}
	}
	return err
}
