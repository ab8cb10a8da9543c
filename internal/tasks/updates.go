package tasks

import (
	"fmt"

	"github.com/desertthunder/playsync/internal/matching"
	"github.com/desertthunder/playsync/internal/models"
)

// ProgressUpdate represents a progress event during a sync run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	FetchDest
	FetchUploads
	Compare
	SearchTracks
	AddTracks
	PlaylistDone
	Complete
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case FetchDest:
		return "fetch_dest"
	case FetchUploads:
		return "fetch_uploads"
	case Compare:
		return "compare"
	case SearchTracks:
		return "search_tracks"
	case AddTracks:
		return "add_tracks"
	case PlaylistDone:
		return "playlist_done"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}

func fetchSourceUpdate(source string, configured int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    0,
		Total:   configured,
		Message: fmt.Sprintf("Loading %d playlist(s) from %s...", configured, source),
	}
}

func fetchDestUpdate(step, total int, name, target string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDest,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: loading %s playlist...", step, total, name, target),
	}
}

func fetchUploadsUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchUploads,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%s: looking up uploaded songs...", name),
	}
}

func compareUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Compare,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s: comparing %d track(s)...", name, total),
	}
}

func searchTracksUpdate(step, total int, t *matching.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, t.Artist, t.Title),
		Data:    t,
	}
}

func addTracksUpdate(name string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%s: adding %d track(s)...", name, count),
	}
}

func playlistDoneUpdate(step, total int, result *ReconcileResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PlaylistDone,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, result.Summary()),
		Data:    result,
	}
}

func completeUpdate(result *SyncResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    result.Matched,
		Total:   result.Configured,
		Message: fmt.Sprintf("Synced %d/%d playlist(s)", len(result.Results), result.Configured),
		Data:    result,
	}
}

// Summary renders the per-playlist counts line.
func (r *ReconcileResult) Summary() string {
	switch r.Status {
	case models.StatusEmpty:
		return fmt.Sprintf("%s: no tracks in source playlist", r.Playlist)
	case models.StatusSkipped:
		return fmt.Sprintf("%s: up to date", r.Playlist)
	}

	s := fmt.Sprintf("%s: %d missing, %d/%d found, %d/%d added",
		r.Playlist, len(r.Missing), len(r.Found), len(r.Missing), r.Added, len(r.Found))
	if r.Status == models.StatusPreview {
		s += " (dry run)"
	}
	return s
}
