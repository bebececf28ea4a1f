// Package store provides a SQLite-backed ledger of corruption runs.
//
// The ledger records:
//   - Runs: one row per invocation of the pipeline (input/output roots,
//     catalog, image count, final status)
//   - Variants: one row per corrupted file written, keyed by
//     (run_id, output_path) so re-recording the same write is a no-op
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The ledger is optional. Corrupted files on disk remain the source of
// truth; a resumed run overwrites them and records its own variants.
package store
