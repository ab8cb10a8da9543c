package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/desertthunder/playsync/internal/formatter"
	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/repositories"
	"github.com/desertthunder/playsync/internal/shared"
	"github.com/desertthunder/playsync/internal/tasks"
	"github.com/desertthunder/playsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// SyncRun mirrors each configured playlist into the target and prints a per-playlist summary.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	config := r.cfg()

	names := cmd.StringSlice("playlist")
	if len(names) == 0 {
		if len(config.Sync.Playlists) == 0 {
			return fmt.Errorf("%w: set sync.playlists, %s or pass --playlist", shared.ErrNoConfiguredPlaylists, shared.EnvSyncPlaylists)
		}
		if err := config.Validate(); err != nil {
			return err
		}
		names = config.Sync.Playlists
	}

	dryRun := cmd.Bool("dry-run") || config.Sync.DryRun

	source, target, err := r.loadServices(ctx)
	if err != nil {
		return err
	}

	useTUI := cmd.Bool("tui")
	logger := r.logger
	if useTUI {
		// the TUI owns the terminal
		fileLogger, closer, err := shared.NewFileLogger(filepath.Join(filepath.Dir(config.Database.Path), "playsync.log"))
		if err != nil {
			return err
		}
		defer closer.Close()
		shared.SetLogLevel(fileLogger, r.logger.GetLevel())
		logger = fileLogger
	}

	engine := tasks.NewPlaylistEngine(source, target, logger, tasks.ReconcileOptions{
		Market:      config.Sync.Market,
		SearchLimit: config.Sync.SearchLimit,
		DryRun:      dryRun,
	})

	if !cmd.Bool("no-history") {
		db, closeDB, err := r.database()
		if err != nil {
			return err
		}
		defer closeDB()
		engine.SetRecorder(repositories.NewRecorder(repositories.NewReportRepository(db)))
	}

	var result *tasks.SyncResult
	if useTUI {
		result, err = ui.Run(ctx, engine, names, ui.Options{AutoStart: cmd.Bool("yes"), DryRun: dryRun})
	} else {
		result, err = r.syncPlain(ctx, engine, names)
	}

	r.persistToken()

	if result != nil && !useTUI {
		r.writeSummary(result, dryRun)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

// syncPlain runs the engine while printing finished playlists as they arrive.
func (r *Runner) syncPlain(ctx context.Context, engine tasks.SyncEngine, names []string) (*tasks.SyncResult, error) {
	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			switch update.Phase {
			case tasks.PlaylistDone:
				r.writePlain("%s\n", update.Message)
			default:
				r.logger.Debug(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
			}
		}
	}()

	result, err := engine.Sync(ctx, names, progress)
	close(progress)
	<-done

	return result, err
}

func (r *Runner) writeSummary(result *tasks.SyncResult, dryRun bool) {
	title := "Sync Summary"
	if dryRun {
		title += " (dry run)"
	}
	r.writePlainln("")
	r.writePlainHeader(title)

	added, unresolved := 0, 0
	for _, res := range result.Results {
		added += res.Added
		unresolved += len(res.Unresolved)
	}

	r.writePlain("Run:        %s\n", result.RunID)
	r.writePlain("Playlists:  %d/%d processed, %d found on source\n", len(result.Results), result.Configured, result.Matched)
	r.writePlain("Added:      %d track(s)\n", added)
	r.writePlain("Unresolved: %d track(s)\n", unresolved)
	r.writePlain("Duration:   %s\n", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))

	if result.Matched < result.Configured {
		r.writePlainln("%d configured playlist(s) were not found on the source", result.Configured-result.Matched)
	}

	// live PlaylistDone lines may be dropped when the progress buffer is full
	for _, res := range result.Results {
		r.writePlainln("%s", res.Summary())
		for _, t := range res.Unresolved {
			r.writePlain("  ✗ %s\n", t)
		}
		if len(res.Gaps) > 0 {
			r.writePlain("  entries without metadata at positions %v\n", res.Gaps)
		}
	}
}

// SyncHistory lists recorded sync reports in the requested format.
func (r *Runner) SyncHistory(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	status := cmd.String("status")
	if status != "" && !models.ReportStatus(status).Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidFlag, status)
	}

	db, closeDB, err := r.database()
	if err != nil {
		return err
	}
	defer closeDB()

	repo := repositories.NewReportRepository(db)

	var reports []*models.SyncReport
	if cmd.Bool("latest") {
		reports, err = repo.LatestRun()
	} else {
		criteria := map[string]any{}
		if v := cmd.String("playlist"); v != "" {
			criteria["playlist"] = v
		}
		if v := cmd.String("run"); v != "" {
			criteria["run_id"] = v
		}
		if status != "" {
			criteria["status"] = status
		}
		if limit := cmd.Int("limit"); limit > 0 {
			criteria["limit"] = int(limit)
		}
		reports, err = repo.List(criteria)
	}
	if err != nil {
		return fmt.Errorf("failed to load sync history: %w", err)
	}

	data, err := formatter.Render(reports, format)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(path, data); err != nil {
			return err
		}
		r.logger.Info("history exported", "path", path, "reports", len(reports))
		return r.writePlain("✓ Wrote %d report(s) to %s\n", len(reports), path)
	}

	_, err = r.output.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
