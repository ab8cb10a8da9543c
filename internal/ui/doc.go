// Package ui implements the interactive sync view using bubbletea's Elm architecture.
//
// The TUI walks through three views:
//  1. [ConfirmView] : the configured playlists about to be synced
//  2. [SyncView] : a spinner with the current phase, step counters and recent playlist summaries
//  3. [ResultView] : one entry per processed playlist plus the run totals
//
// Progress updates flow from [tasks.SyncEngine] through a buffered channel. The engine never blocks on it;
// updates dropped while the UI is busy are simply not shown.
//
// With [Options.AutoStart] the confirm step is skipped.
package ui
