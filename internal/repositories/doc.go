// Package repositories implements SQLite persistence for sync history.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [ReportRepository] : per-playlist sync reports with run and playlist lookups
//   - [Recorder] : adapts finished reconciliations into stored reports during a sync run
//
// Sequence numbers provide stable, human-readable ordering (e.g., report #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function allocates per-table sequence values from dedicated sequence tables.
package repositories
