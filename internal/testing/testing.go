// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/shared"
)

// StubSource is a test double for [services.SourceService] serving fixed playlists.
type StubSource struct {
	Playlists []models.PlaylistRecord
	Uploads   map[string]models.TrackMetadata
	Err       error
}

func (s *StubSource) Name() string { return "YouTube Music" }
func (s *StubSource) Reset()       {}

func (s *StubSource) ListConfiguredPlaylists(ctx context.Context, names []string) ([]models.PlaylistRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var out []models.PlaylistRecord
	for _, p := range s.Playlists {
		if wanted[p.Name] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *StubSource) UploadedSongsByID(ctx context.Context) (map[string]models.TrackMetadata, error) {
	return s.Uploads, s.Err
}

// StubTarget is a test double for [services.TargetService]. Search returns every catalog entry whose title
// appears in the query; added identifiers are collected per playlist name.
type StubTarget struct {
	Catalog []models.TrackMetadata
	Added   map[string][]string
	Err     error
}

func (s *StubTarget) Name() string { return "Spotify" }
func (s *StubTarget) Reset()       {}

func (s *StubTarget) GetOrCreatePlaylist(ctx context.Context, name string) (*models.TargetPlaylist, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return &models.TargetPlaylist{ID: "pl-" + name, URI: "spotify:playlist:pl-" + name, Name: name}, nil
}

func (s *StubTarget) GetPlaylistTracks(ctx context.Context, uri string) (*models.PlaylistTracks, error) {
	return &models.PlaylistTracks{}, nil
}

func (s *StubTarget) Search(ctx context.Context, query, market, kind string, limit int) (*models.SearchResults, error) {
	results := &models.SearchResults{}
	for _, t := range s.Catalog {
		if strings.Contains(query, `track:"`+t.Title+`"`) {
			results.Tracks = append(results.Tracks, t)
		}
	}
	return results, nil
}

func (s *StubTarget) AddTracksToPlaylist(ctx context.Context, p *models.TargetPlaylist, ids []string) error {
	if s.Added == nil {
		s.Added = map[string][]string{}
	}
	s.Added[p.Name] = append(s.Added[p.Name], ids...)
	return nil
}

// SampleReports returns two runs worth of reports with fixed timestamps.
func SampleReports() []*models.SyncReport {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	synced := models.NewSyncReport(1, "run-1", "Road Trip", models.StatusSynced)
	synced.SetID("r1")
	synced.TargetID = "p1"
	synced.Missing, synced.Found, synced.Added, synced.Unresolved, synced.Gaps = 3, 2, 2, 1, 1
	synced.SetCreatedAt(at)

	skipped := models.NewSyncReport(2, "run-1", "Focus, Vol. 2", models.StatusSkipped)
	skipped.SetID("r2")
	skipped.SetCreatedAt(at)

	preview := models.NewSyncReport(3, "run-2", "Road Trip", models.StatusPreview)
	preview.SetID("r3")
	preview.Missing, preview.Found = 1, 1
	preview.SetCreatedAt(at.Add(time.Hour))

	return []*models.SyncReport{synced, skipped, preview}
}

// NewMemoryDB opens a migrated in-memory database closed with the test.
func NewMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// every connection to :memory: is its own database
	db.SetMaxOpenConns(1)

	if _, err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
