// Package engine orders the initialization and finalization of a fixed set of
// interdependent modules.
//
// Every module's imports are fully initialized before the module itself, and
// torn down only after it. The engine has three phases that share one Handle:
//
//  1. Sort: an iterative depth-first, dependencies-first traversal of the
//     Registry that produces an ordered table or a cycle path.
//  2. Run: invokes init hooks in table order, stopping at the first failure.
//  3. Finalize: invokes fini hooks in strict reverse order over the prefix that
//     was brought up, stopping at the first failure.
//
// ARCHITECTURE:
//
// Registry Arena:
// Modules live in a flat slice owned by the Registry. Imports are indices into
// that slice, so the import graph (which may contain cycles) never aliases.
// A Registry is assembled once by a Builder and its membership never changes.
//
// Single-Threaded:
// Each phase runs to completion or to its first error in one pass. There is no
// internal locking; hosts embedding the engine in a concurrent program must
// serialise every call on a Registry and its Handle.
//
// FAILURE SEMANTICS:
//
//   - AllocationFailure: the table could not be sized. No module state changed.
//   - Cycle: detected during Sort, before any init hook runs.
//   - Failed (run): table[cursor] is the module whose init hook failed; the
//     prefix [0, cursor) is initialized and is not undone automatically.
//   - Failed (finalize): table[cursor] is the module whose fini hook failed;
//     entries above it were finalized. The handle keeps its table for
//     diagnostics and refuses further use.
//
// Nothing is retried.
package engine
