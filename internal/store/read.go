package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/modinit/internal/ir"
)

// ErrRunNotFound is returned when no journaled run matches the request.
var ErrRunNotFound = errors.New("run not found")

// ErrTraceMismatch is returned by VerifyRun when the stored rows no longer
// hash to the trace hash recorded at write time.
var ErrTraceMismatch = errors.New("trace hash mismatch")

// RunSummary is the listing view of a journaled run.
type RunSummary struct {
	Seq            int64
	ID             string
	Label          string
	ManifestHash   string
	TraceHash      string
	InitResult     string
	FinalizeResult string
}

// ReadRun returns the full record of a run, including its table and hook
// calls in sequence order.
func (s *Store) ReadRun(ctx context.Context, id string) (*ir.RunRecord, error) {
	r, _, err := s.readRun(ctx, id)
	return r, err
}

// LatestRun returns the most recently journaled run.
func (s *Store) LatestRun(ctx context.Context) (*ir.RunRecord, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM runs ORDER BY seq DESC LIMIT 1
	`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest run: %w", err)
	}
	return s.ReadRun(ctx, id)
}

// ListRuns returns every journaled run in insertion order.
// Returns an empty slice (not nil) for an empty journal.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, label, manifest_hash, trace_hash, init_result, finalize_result
		FROM runs
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var rs RunSummary
		if err := rows.Scan(&rs.Seq, &rs.ID, &rs.Label, &rs.ManifestHash, &rs.TraceHash,
			&rs.InitResult, &rs.FinalizeResult); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// VerifyRun recomputes the trace hash of a stored run and compares it with
// the hash recorded when the run was written.
func (s *Store) VerifyRun(ctx context.Context, id string) error {
	r, stored, err := s.readRun(ctx, id)
	if err != nil {
		return err
	}
	got, err := ir.TraceHash(r)
	if err != nil {
		return fmt.Errorf("verify run %s: %w", id, err)
	}
	if got != stored {
		return fmt.Errorf("verify run %s: %w: stored %s, computed %s", id, ErrTraceMismatch, stored, got)
	}
	return nil
}

func (s *Store) readRun(ctx context.Context, id string) (*ir.RunRecord, string, error) {
	r := &ir.RunRecord{}
	var traceHash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, label, manifest_hash, trace_hash, init_result, init_cursor,
		       finalize_result, finalize_cursor
		FROM runs
		WHERE id = ?
	`, id).Scan(&r.ID, &r.Label, &r.ManifestHash, &traceHash, &r.InitResult, &r.InitCursor,
		&r.FinalizeResult, &r.FinalizeCursor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, "", fmt.Errorf("query run: %w", err)
	}

	if r.Table, err = s.readTable(ctx, id); err != nil {
		return nil, "", err
	}
	if r.Calls, err = s.readCalls(ctx, id); err != nil {
		return nil, "", err
	}
	return r, traceHash, nil
}

func (s *Store) readTable(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT module FROM run_table WHERE run_id = ? ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query run table: %w", err)
	}
	defer rows.Close()

	table := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan run table: %w", err)
		}
		table = append(table, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run table: %w", err)
	}
	return table, nil
}

func (s *Store) readCalls(ctx context.Context, id string) ([]ir.HookCall, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, stage, module, hook, ok, error
		FROM hook_calls
		WHERE run_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query hook calls: %w", err)
	}
	defer rows.Close()

	calls := []ir.HookCall{}
	for rows.Next() {
		var c ir.HookCall
		if err := rows.Scan(&c.Seq, &c.Stage, &c.Module, &c.Hook, &c.OK, &c.Error); err != nil {
			return nil, fmt.Errorf("scan hook call: %w", err)
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hook calls: %w", err)
	}
	return calls, nil
}
