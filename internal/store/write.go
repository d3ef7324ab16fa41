package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/roach88/modinit/internal/ir"
)

// WriteRun journals a run in a single transaction.
//
// The run id is the idempotency key: if a run with the same id already
// exists the call succeeds without writing anything. A partial write is
// never visible.
func (s *Store) WriteRun(ctx context.Context, r *ir.RunRecord) (err error) {
	if r == nil || r.ID == "" {
		return errors.New("write run: run id is required")
	}

	traceHash, err := ir.TraceHash(r)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, ignoreDone(tx.Rollback()))
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, label, manifest_hash, trace_hash, init_result, init_cursor,
		 finalize_result, finalize_cursor, journal_version, tool_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.ID,
		r.Label,
		r.ManifestHash,
		traceHash,
		r.InitResult,
		r.InitCursor,
		r.FinalizeResult,
		r.FinalizeCursor,
		ir.JournalVersion,
		ir.ToolVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if n == 0 {
		// Already journaled.
		return tx.Commit()
	}

	if err := writeTable(ctx, tx, r); err != nil {
		return err
	}
	if err := writeCalls(ctx, tx, r); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

func writeTable(ctx context.Context, tx *sql.Tx, r *ir.RunRecord) (err error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_table (run_id, position, module) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run table: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(stmt))

	for i, name := range r.Table {
		if _, err := stmt.ExecContext(ctx, r.ID, i, name); err != nil {
			return fmt.Errorf("write run table: position %d: %w", i, err)
		}
	}
	return nil
}

func writeCalls(ctx context.Context, tx *sql.Tx, r *ir.RunRecord) (err error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO hook_calls (run_id, seq, stage, module, hook, ok, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write hook calls: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(stmt))

	for _, c := range r.Calls {
		if _, err := stmt.ExecContext(ctx, r.ID, c.Seq, c.Stage, c.Module, c.Hook, c.OK, c.Error); err != nil {
			return fmt.Errorf("write hook calls: seq %d: %w", c.Seq, err)
		}
	}
	return nil
}

func ignoreDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}
