package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/shared"
)

const reportColumns = `id, sequence, run_id, playlist, target_id, status, missing, found, added, unresolved, gaps, created_at, updated_at, deleted_at`

// ReportRepository implements models.Repository[*models.SyncReport] for sync history.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new ReportRepository with the given database connection
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new report into the database with generated ID and sequence
func (r *ReportRepository) Create(report *models.SyncReport) error {
	if err := report.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "sync_reports")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO sync_reports (id, sequence, run_id, playlist, target_id, status, missing, found, added, unresolved, gaps, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		report.RunID,
		report.Playlist,
		report.TargetID,
		string(report.Status),
		report.Missing,
		report.Found,
		report.Added,
		report.Unresolved,
		report.Gaps,
		report.CreatedAt(),
		report.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync report: %w", err)
	}

	report.SetID(id)
	report.SetSequence(sequence)
	return nil
}

// Get retrieves a report by ID, excluding soft-deleted reports
func (r *ReportRepository) Get(id string) (*models.SyncReport, error) {
	query := `SELECT ` + reportColumns + ` FROM sync_reports WHERE id = ? AND deleted_at IS NULL`

	report, err := scanReport(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrReportNotFound, id)
	}
	return report, err
}

// Update modifies the status and counts of an existing report
func (r *ReportRepository) Update(report *models.SyncReport) error {
	if err := report.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	report.SetUpdatedAt(now)

	query := `
		UPDATE sync_reports
		SET target_id = ?, status = ?, missing = ?, found = ?, added = ?, unresolved = ?, gaps = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		report.TargetID,
		string(report.Status),
		report.Missing,
		report.Found,
		report.Added,
		report.Unresolved,
		report.Gaps,
		now,
		report.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update sync report: %w", err)
	}

	return checkAffected(result, report.ID())
}

// Delete soft-deletes a report by ID
func (r *ReportRepository) Delete(id string) error {
	query := `
		UPDATE sync_reports
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete sync report: %w", err)
	}

	return checkAffected(result, id)
}

// List retrieves reports matching the given criteria in sequence order, excluding soft-deleted reports.
//
// Supported criteria: "playlist", "run_id" and "status" (string or [models.ReportStatus]) filter by equality,
// "limit" (int) keeps only the most recent reports.
func (r *ReportRepository) List(criteria map[string]any) ([]*models.SyncReport, error) {
	query := `SELECT ` + reportColumns + ` FROM sync_reports WHERE deleted_at IS NULL`
	args := []any{}

	if playlist, ok := criteria["playlist"].(string); ok && playlist != "" {
		query += " AND playlist = ?"
		args = append(args, playlist)
	}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}

	switch status := criteria["status"].(type) {
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	case models.ReportStatus:
		query += " AND status = ?"
		args = append(args, string(status))
	}

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query = `SELECT * FROM (` + query + ` ORDER BY sequence DESC LIMIT ?)`
		args = append(args, limit)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.SyncReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return reports, nil
}

// LatestRun returns the reports of the most recent run, or an empty slice when no run was recorded.
func (r *ReportRepository) LatestRun() ([]*models.SyncReport, error) {
	var runID string
	err := r.db.QueryRow(`SELECT run_id FROM sync_reports WHERE deleted_at IS NULL ORDER BY sequence DESC LIMIT 1`).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return []*models.SyncReport{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	return r.List(map[string]any{"run_id": runID})
}

type scanner interface {
	Scan(dest ...any) error
}

// scanReport scans a single row from [sql.Row] or [sql.Rows] into a [models.SyncReport]
func scanReport(row scanner) (*models.SyncReport, error) {
	var (
		id        string
		sequence  int
		runID     string
		playlist  string
		targetID  string
		status    string
		report    models.SyncReport
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &runID, &playlist, &targetID, &status,
		&report.Missing, &report.Found, &report.Added, &report.Unresolved, &report.Gaps,
		&createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync report: %w", err)
	}

	out := models.NewSyncReport(sequence, runID, playlist, models.ReportStatus(status))
	out.SetID(id)
	out.TargetID = targetID
	out.Missing, out.Found, out.Added = report.Missing, report.Found, report.Added
	out.Unresolved, out.Gaps = report.Unresolved, report.Gaps
	out.SetCreatedAt(createdAt)
	out.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		out.SetDeletedAt(&deletedAt.Time)
	}

	return out, nil
}

func checkAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w or already deleted: %s", shared.ErrReportNotFound, id)
	}
	return nil
}
