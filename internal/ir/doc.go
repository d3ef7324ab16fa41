// Package ir holds the data types shared between the manifest compiler, the
// harness, the run journal and the CLI.
//
// This package contains type definitions and pure functions only. All other
// internal packages may import ir; ir imports nothing internal, so it stays
// the foundational layer.
//
// Constraints:
//   - no float types; sequence numbers and cursors are integers
//   - JSON tags use snake_case
//   - hook traces use logical sequence numbers, never wall-clock time
package ir
