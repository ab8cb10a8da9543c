package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playsync/internal/matching"
	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/services"
	"github.com/desertthunder/playsync/internal/shared"
)

const (
	DefaultMarket      = "from_token"
	DefaultSearchLimit = 10
	searchType         = "track"
)

// ReconcileOptions tune how missing tracks are searched for and whether they are added.
type ReconcileOptions struct {
	Market      string // search market, "from_token" uses the account's country
	SearchLimit int    // size of the single result page inspected per search
	DryRun      bool   // search and match but never add
}

// ReconcileResult is the outcome of one playlist pass.
type ReconcileResult struct {
	Playlist   string
	Target     *models.TargetPlaylist
	Status     models.ReportStatus
	Missing    []*matching.Track // not present in the target, in source order
	Found      []*matching.Track // subset of Missing resolved by search
	Added      int
	Unresolved []*matching.Track // subset of Missing with no matching candidate
	Gaps       []int             // 1-based positions of source entries without usable metadata
}

// Reconciler computes the tracks missing from a target playlist, resolves them by search and adds them.
type Reconciler struct {
	source  services.SourceService
	target  services.TargetService
	logger  *log.Logger
	options ReconcileOptions
}

// NewReconciler creates a [Reconciler]. Empty options fall back to [DefaultMarket] and [DefaultSearchLimit].
func NewReconciler(source services.SourceService, target services.TargetService, logger *log.Logger, opts ReconcileOptions) *Reconciler {
	if opts.Market == "" {
		opts.Market = DefaultMarket
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	return &Reconciler{
		source:  source,
		target:  target,
		logger:  shared.WithLogger(logger, "component", "reconciler"),
		options: opts,
	}
}

// IsSynced reports whether the target can be considered current: both latest-addition instants are known,
// the target's is not older than the source's, and the track counts agree.
func IsSynced(srcLatest time.Time, srcCount int, dstLatest time.Time, dstCount int) bool {
	if srcLatest.IsZero() || dstLatest.IsZero() {
		return false
	}
	return !dstLatest.Before(srcLatest) && srcCount == dstCount
}

// Reconcile brings dst up to date with src. Progress updates are optional; pass nil to disable them.
//
// Entries without metadata and search misses are reported in the result, never as errors.
// Any platform call failure is returned as-is and leaves the playlist partially processed.
func (r *Reconciler) Reconcile(ctx context.Context, src models.PlaylistRecord, dst *models.TargetPlaylist, progress chan<- ProgressUpdate) (*ReconcileResult, error) {
	result := &ReconcileResult{Playlist: src.Name, Target: dst}
	logger := r.logger.With("playlist", src.Name)

	if len(src.Entries) == 0 {
		logger.Info("no tracks found in source playlist")
		result.Status = models.StatusEmpty
		return result, nil
	}

	existing, err := r.target.GetPlaylistTracks(ctx, dst.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s playlist %q: %w", r.target.Name(), dst.Name, err)
	}

	srcLatest, srcCount := src.LastModified, src.TrackCount()
	dstLatest, dstCount := existing.LatestAddition(), len(existing.Items)
	if IsSynced(srcLatest, srcCount, dstLatest, dstCount) {
		logger.Info("target modified after source and track counts match, skipping", "tracks", srcCount)
		result.Status = models.StatusSkipped
		return result, nil
	}

	missing, err := r.missingTracks(ctx, src, existing, result, progress)
	if err != nil {
		return nil, err
	}
	result.Missing = missing

	if len(missing) == 0 {
		logger.Info("no missing tracks")
		result.Status = models.StatusSynced
		return result, nil
	}
	logger.Debug("identified missing tracks", "missing", len(missing))

	for i, t := range missing {
		sendProgress(progress, searchTracksUpdate(i+1, len(missing), t))

		ok, err := r.resolve(ctx, t)
		if err != nil {
			return nil, err
		}
		if ok {
			result.Found = append(result.Found, t)
		} else {
			logger.Info("no match found", "track", t.String())
			result.Unresolved = append(result.Unresolved, t)
		}
	}
	logger.Debug("resolved missing tracks", "found", len(result.Found), "missing", len(missing))

	if r.options.DryRun {
		logger.Info("dry run, not adding tracks", "found", len(result.Found), "missing", len(missing))
		result.Status = models.StatusPreview
		return result, nil
	}

	if len(result.Found) > 0 {
		sendProgress(progress, addTracksUpdate(src.Name, len(result.Found)))

		ids := make([]string, 0, len(result.Found))
		for _, t := range result.Found {
			id, _ := t.ResolvedID()
			ids = append(ids, id)
		}

		if err := r.target.AddTracksToPlaylist(ctx, dst, ids); err != nil {
			return nil, fmt.Errorf("failed to add tracks to %s playlist %q: %w", r.target.Name(), dst.Name, err)
		}
		result.Added = len(ids)
		logger.Info("added missing tracks", "added", result.Added, "missing", len(missing))
	}

	result.Status = models.StatusSynced
	return result, nil
}

// missingTracks walks the source entries in order and returns the tracks with no equivalent in existing.
// Entries that cannot be identified are logged and recorded as gaps.
func (r *Reconciler) missingTracks(
	ctx context.Context,
	src models.PlaylistRecord,
	existing *models.PlaylistTracks,
	result *ReconcileResult,
	progress chan<- ProgressUpdate,
) ([]*matching.Track, error) {
	var (
		uploads map[string]models.TrackMetadata
		loaded  bool
		missing []*matching.Track
	)

	for i, entry := range src.Entries {
		position := i + 1
		sendProgress(progress, compareUpdate(position, len(src.Entries), src.Name))

		t := matching.FromMetadata(entry.Track)
		if t.IsEmpty() {
			if !loaded {
				sendProgress(progress, fetchUploadsUpdate(src.Name))

				var err error
				if uploads, err = r.source.UploadedSongsByID(ctx); err != nil {
					return nil, fmt.Errorf("failed to load uploaded songs from %s: %w", r.source.Name(), err)
				}
				loaded = true
			}

			if meta, ok := uploads[entry.TrackID]; ok {
				t = matching.FromMetadata(&meta)
			}
		}

		if t.IsEmpty() {
			r.logger.Error("track has no track info associated with it",
				"playlist", src.Name, "position", position, "track_id", entry.TrackID, "error", shared.ErrMissingTrackInfo)
			result.Gaps = append(result.Gaps, position)
			continue
		}

		if !present(t, existing) {
			missing = append(missing, t)
		}
	}

	return missing, nil
}

// present reports whether any existing target entry matches t.
func present(t *matching.Track, existing *models.PlaylistTracks) bool {
	for _, item := range existing.Items {
		if item.Track != nil && matching.Matches(t, *item.Track) {
			return true
		}
	}
	return false
}

// resolve searches the target for t and resolves it to the first candidate that matches.
func (r *Reconciler) resolve(ctx context.Context, t *matching.Track) (bool, error) {
	r.logger.Debug("searching for matching track", "track", t.String())

	results, err := r.target.Search(ctx, t.SearchQuery(), r.options.Market, searchType, r.options.SearchLimit)
	if err != nil {
		return false, fmt.Errorf("failed to search %s for %s: %w", r.target.Name(), t, err)
	}

	for _, candidate := range results.Tracks {
		if matching.Matches(t, candidate) {
			t.Resolve(candidate.TargetID())
			r.logger.Debug("match found", "track", t.String(), "candidate", candidate.Title)
			return true, nil
		}
	}
	return false, nil
}
