// Package audit defines the verdict audit trail: one Record per gate or
// feedback decision, the Storage interface backends implement, and the
// typed errors shared by the subpackages.
//
// Subpackages:
//
//   - storage: SQLite (cgo "sqlite3" or pure Go "sqlite" driver) and
//     in-memory backends
//   - recorder: asynchronous recording of verdicts, drained on Close
//   - retention: age and count based pruning, with a cron scheduler for
//     the long-running watch mode
//   - export: JSON and CSV exporters
//
// Recording never affects a verdict. A record that cannot be written is
// logged and dropped.
package audit
