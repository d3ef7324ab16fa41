package harness

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/roach88/modinit/internal/ir"
	"github.com/roach88/modinit/internal/testutil"
)

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Record is the simulated run.
	Record *ir.RunRecord `json:"record"`

	// Errors holds one message per failed expectation.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result for record.
func NewResult(record *ir.RunRecord) *Result {
	return &Result{Pass: true, Record: record, Errors: []string{}}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run executes a scenario and checks its expectations.
//
// Each scenario gets a fresh clock and its fixed run id, so results are
// reproducible. The returned error covers only problems that prevent the
// run (unreadable manifest, unbindable registry); failed expectations are
// reported on the Result.
func Run(s *Scenario) (*Result, error) {
	m, err := s.LoadManifest()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	record, err := Execute(m, ExecOptions{
		Fail:         NewFailSet(s.Fail...),
		SkipFinalize: s.SkipFinalize,
		TableLimit:   s.TableLimit,
		Label:        s.Name,
		IDs:          testutil.NewFixedIDGenerator(s.RunID),
		Clock:        testutil.NewDeterministicClock(),
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	result := NewResult(record)
	for _, e := range multierr.Errors(CheckExpect(record, s.Expect)) {
		result.AddError(e.Error())
	}
	return result, nil
}
