package models

import (
	"fmt"
	"time"
)

// ReportStatus describes how a playlist pass ended.
type ReportStatus string

const (
	StatusEmpty   ReportStatus = "empty"   // source playlist had no entries
	StatusSkipped ReportStatus = "skipped" // target already up to date
	StatusSynced  ReportStatus = "synced"  // missing tracks computed, matches added
	StatusPreview ReportStatus = "preview" // dry run, nothing added
)

// Valid reports whether s is a known status.
func (s ReportStatus) Valid() bool {
	switch s {
	case StatusEmpty, StatusSkipped, StatusSynced, StatusPreview:
		return true
	default:
		return false
	}
}

// SyncReport is the persisted per-playlist summary of one sync run.
//
// It holds counts only; individual matches are never stored.
type SyncReport struct {
	id        string
	sequence  int
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time

	RunID      string
	Playlist   string
	TargetID   string
	Status     ReportStatus
	Missing    int
	Found      int
	Added      int
	Unresolved int
	Gaps       int
}

// NewSyncReport creates a report for the given run and playlist with creation timestamps set to now.
func NewSyncReport(sequence int, runID, playlist string, status ReportStatus) *SyncReport {
	now := time.Now()
	return &SyncReport{
		sequence:  sequence,
		createdAt: now,
		updatedAt: now,
		RunID:     runID,
		Playlist:  playlist,
		Status:    status,
	}
}

func (r *SyncReport) ID() string            { return r.id }
func (r *SyncReport) SetID(id string)       { r.id = id }
func (r *SyncReport) Sequence() int         { return r.sequence }
func (r *SyncReport) SetSequence(s int)     { r.sequence = s }
func (r *SyncReport) CreatedAt() time.Time  { return r.createdAt }
func (r *SyncReport) UpdatedAt() time.Time  { return r.updatedAt }
func (r *SyncReport) DeletedAt() *time.Time { return r.deletedAt }

func (r *SyncReport) SetCreatedAt(t time.Time)  { r.createdAt = t }
func (r *SyncReport) SetUpdatedAt(t time.Time)  { r.updatedAt = t }
func (r *SyncReport) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// Validate checks required fields and count consistency.
func (r *SyncReport) Validate() error {
	if r.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if r.Playlist == "" {
		return fmt.Errorf("playlist name is required")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("invalid status %q", r.Status)
	}
	if r.Missing < 0 || r.Found < 0 || r.Added < 0 || r.Unresolved < 0 || r.Gaps < 0 {
		return fmt.Errorf("counts must not be negative")
	}
	if r.Found > r.Missing {
		return fmt.Errorf("found (%d) exceeds missing (%d)", r.Found, r.Missing)
	}
	if r.Added > r.Found {
		return fmt.Errorf("added (%d) exceeds found (%d)", r.Added, r.Found)
	}
	return nil
}
