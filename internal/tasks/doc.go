// Package tasks runs one-way playlist synchronization with real-time progress reporting.
//
// # Sync Run
//
// [PlaylistEngine.Sync] loads the configured playlists from the source in library order, then for each one
// gets or creates the target playlist of the same name and hands the pair to the [Reconciler]. Pairs are
// processed one at a time; the first platform error ends the run.
//
// # Reconciliation
//
// [Reconciler.Reconcile] performs, in order:
//
//  1. Empty source: nothing to do.
//  2. Freshness check with [IsSynced]: both latest-addition instants known, target not older, equal
//     counts. When it holds no track comparison or search is done.
//  3. Identity building: embedded metadata first, then the uploaded-songs lookup by track id. Entries
//     still without a title are logged and recorded as gaps.
//  4. Membership: a track is present if any existing target item satisfies [matching.Matches].
//  5. Search for each missing track; the first candidate in result order that matches wins.
//  6. One add call with every resolved identifier, skipped for dry runs and empty batches.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Reports
//
// An optional [ReportRecorder] receives every finished [ReconcileResult]. Recording failures are logged
// and do not affect the run.
package tasks
