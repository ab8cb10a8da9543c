package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playsync/internal/services"
	"github.com/desertthunder/playsync/internal/shared"
)

// SyncResult contains the outcome of a full sync run.
type SyncResult struct {
	RunID      string
	Configured int                // playlists requested
	Matched    int                // playlists found on the source
	Results    []*ReconcileResult // one per processed playlist, in source order
	StartedAt  time.Time
	FinishedAt time.Time
}

// ReportRecorder persists per-playlist results. Failures are logged and never abort a run.
type ReportRecorder interface {
	Record(runID string, result *ReconcileResult) error
}

// SyncEngine runs playlist synchronization between a source and a target service.
type SyncEngine interface {
	// Sync mirrors each named source playlist into the target playlist of the same name.
	Sync(ctx context.Context, names []string, progress chan<- ProgressUpdate) (*SyncResult, error)
}

// PlaylistEngine implements [SyncEngine].
type PlaylistEngine struct {
	source     services.SourceService
	target     services.TargetService
	reconciler *Reconciler
	recorder   ReportRecorder
	logger     *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided services.
func NewPlaylistEngine(source services.SourceService, target services.TargetService, logger *log.Logger, opts ReconcileOptions) *PlaylistEngine {
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	return &PlaylistEngine{
		source:     source,
		target:     target,
		reconciler: NewReconciler(source, target, logger, opts),
		logger:     shared.WithLogger(logger, "component", "engine"),
	}
}

// SetRecorder installs a [ReportRecorder] called after each finished playlist.
func (e *PlaylistEngine) SetRecorder(r ReportRecorder) {
	e.recorder = r
}

// Sync processes each configured playlist to completion before the next, in source library order.
//
// Run-scoped caches on both services are cleared first. The first platform error stops the run; the
// partial result up to that point is returned alongside it.
func (e *PlaylistEngine) Sync(ctx context.Context, names []string, progress chan<- ProgressUpdate) (*SyncResult, error) {
	if e.source == nil || e.target == nil {
		return nil, fmt.Errorf("%w: source and target services are required", shared.ErrServiceUnavailable)
	}
	if len(names) == 0 {
		return nil, shared.ErrNoConfiguredPlaylists
	}

	result := &SyncResult{
		RunID:      shared.GenerateID(),
		Configured: len(names),
		StartedAt:  time.Now(),
	}
	logger := e.logger.With("run_id", result.RunID)

	e.source.Reset()
	e.target.Reset()

	sendProgress(progress, fetchSourceUpdate(e.source.Name(), len(names)))

	playlists, err := e.source.ListConfiguredPlaylists(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s playlists: %w", e.source.Name(), err)
	}
	result.Matched = len(playlists)
	logger.Info(fmt.Sprintf("found %d/%d %s playlists to sync", len(playlists), len(names), e.source.Name()))

	for i, src := range playlists {
		step := i + 1
		logger.Info("source playlist", "name", src.Name, "id", src.ID)
		sendProgress(progress, fetchDestUpdate(step, len(playlists), src.Name, e.target.Name()))

		dst, err := e.target.GetOrCreatePlaylist(ctx, src.Name)
		if err != nil {
			result.FinishedAt = time.Now()
			return result, fmt.Errorf("failed to get or create %s playlist %q: %w", e.target.Name(), src.Name, err)
		}
		logger.Info("target playlist", "name", dst.Name, "id", dst.ID)

		res, err := e.reconciler.Reconcile(ctx, src, dst, progress)
		if err != nil {
			result.FinishedAt = time.Now()
			return result, err
		}
		result.Results = append(result.Results, res)
		sendProgress(progress, playlistDoneUpdate(step, len(playlists), res))

		if e.recorder != nil {
			if err := e.recorder.Record(result.RunID, res); err != nil {
				logger.Warn("failed to record sync report", "playlist", src.Name, "error", err)
			}
		}
	}

	result.FinishedAt = time.Now()
	sendProgress(progress, completeUpdate(result))
	return result, nil
}
