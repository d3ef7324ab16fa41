package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/modinit/internal/ir"
)

// TraceSnapshot is the golden-file view of a run: outcome, table and calls.
// The manifest hash is left out so that reformatting a manifest does not
// churn golden files.
type TraceSnapshot struct {
	ScenarioName string
	Record       *ir.RunRecord
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	calls := make([]any, len(s.Record.Calls))
	for i, c := range s.Record.Calls {
		call := map[string]any{
			"seq":    c.Seq,
			"stage":  c.Stage,
			"module": c.Module,
			"hook":   c.Hook,
			"ok":     c.OK,
		}
		if c.Error != "" {
			call["error"] = c.Error
		}
		calls[i] = call
	}

	table := s.Record.Table
	if table == nil {
		table = []string{}
	}

	snapshot := map[string]any{
		"scenario_name": s.ScenarioName,
		"run_id":        s.Record.ID,
		"init_result":   s.Record.InitResult,
		"init_cursor":   s.Record.InitCursor,
		"table":         table,
		"calls":         calls,
	}
	if s.Record.Finalized() {
		snapshot["finalize_result"] = s.Record.FinalizeResult
		snapshot["finalize_cursor"] = s.Record.FinalizeCursor
	}
	return ir.MarshalCanonical(snapshot)
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check expectations. Test failure
// (via goldie) occurs if the trace doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result.Record); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing record against a golden file without
// re-running anything.
func AssertGolden(t *testing.T, name string, record *ir.RunRecord) error {
	t.Helper()

	snapshot := TraceSnapshot{ScenarioName: name, Record: record}
	data, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
