// Package store persists simulated runs in a SQLite journal.
//
// Each run is written once, in a single transaction, and keyed by its run
// id. Writing the same id again is a no-op, so a harness that retries a
// write cannot produce duplicate rows.
//
// # Tables
//
//   - runs: outcome of one initialize/finalize cycle (results, cursors, hashes)
//   - run_table: the sorted order, or the cycle path when sorting failed
//   - hook_calls: every init/fini hook invocation in call order
//
// # Ordering
//
// Runs are ordered by insertion seq and hook calls by their logical seq.
// Wall-clock time is never stored, so two journals recorded from the same
// scenarios are identical.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
