package repositories

import (
	"fmt"

	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/tasks"
)

// Recorder stores one [models.SyncReport] per finished playlist. It implements [tasks.ReportRecorder].
type Recorder struct {
	reports *ReportRepository
}

// NewRecorder creates a Recorder backed by the given repository.
func NewRecorder(reports *ReportRepository) *Recorder {
	return &Recorder{reports: reports}
}

// Record converts result into a report of the given run and inserts it.
func (r *Recorder) Record(runID string, result *tasks.ReconcileResult) error {
	if result == nil {
		return fmt.Errorf("no result to record for run %s", runID)
	}

	report := ReportFromResult(runID, result)
	if err := r.reports.Create(report); err != nil {
		return fmt.Errorf("failed to record %q: %w", result.Playlist, err)
	}
	return nil
}

// ReportFromResult maps a reconciliation outcome onto an unsaved report.
func ReportFromResult(runID string, result *tasks.ReconcileResult) *models.SyncReport {
	report := models.NewSyncReport(0, runID, result.Playlist, result.Status)
	if result.Target != nil {
		report.TargetID = result.Target.ID
	}
	report.Missing = len(result.Missing)
	report.Found = len(result.Found)
	report.Added = result.Added
	report.Unresolved = len(result.Unresolved)
	report.Gaps = len(result.Gaps)
	return report
}
