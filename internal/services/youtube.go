// YouTube Music [SourceService] implementation
//
// Communicates with the FastAPI proxy server wrapping the ytmusicapi Python library.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/shared"
)

const defaultYTBaseURL string = "http://127.0.0.1:8080"

// YouTubeArtist represents an artist in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type youtubeAlbum struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeTrack represents a track/video in YouTube Music responses.
type YouTubeTrack struct {
	VideoID string          `json:"videoId"`
	Title   string          `json:"title"`
	Artists []YouTubeArtist `json:"artists"`
	Album   *youtubeAlbum   `json:"album"`
}

// YouTubePlaylistEntry is a single playlist position. Track is null when the proxy has no metadata for it.
type YouTubePlaylistEntry struct {
	TrackID string        `json:"trackId"`
	Track   *YouTubeTrack `json:"track"`
}

// YouTubePlaylistContents is a library playlist with its entries.
type YouTubePlaylistContents struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	LastModified MicroTimestamp         `json:"lastModifiedTimestamp"`
	Tracks       []YouTubePlaylistEntry `json:"tracks"`
}

// MicroTimestamp is a microsecond UNIX timestamp the proxy sends either as a string or a number.
//
// The zero value means unknown.
type MicroTimestamp struct {
	time.Time
}

// UnmarshalJSON accepts "1600000000000000", 1600000000000000, "" and null.
func (m *MicroTimestamp) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		m.Time = time.Time{}
		return nil
	}

	t, err := ParseMicros(raw)
	if err != nil {
		return err
	}
	m.Time = t
	return nil
}

// ParseMicros converts a decimal microsecond epoch into a UTC instant.
func ParseMicros(raw string) (time.Time, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q", shared.ErrInvalidInput, raw)
	}
	if n <= 0 {
		return time.Time{}, nil
	}
	return time.UnixMicro(n).UTC(), nil
}

// YouTubeService implements [SourceService] for YouTube Music via proxy.
type YouTubeService struct {
	baseURL    string
	authFile   string
	httpClient *http.Client
	logger     *log.Logger

	mu      sync.Mutex
	uploads map[string]models.TrackMetadata
}

// NewYouTubeService creates a new YouTube Music service instance.
func NewYouTubeService(baseURL string, logger *log.Logger) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	return &YouTubeService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		logger:     shared.WithLogger(logger, "service", "youtube"),
	}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube Music"
}

// Authenticate stores the authentication file path for subsequent requests.
//
// The path (browser.json or oauth.json) is sent to the proxy on every request.
func (y *YouTubeService) Authenticate(authFile string) error {
	if authFile == "" {
		return fmt.Errorf("%w: missing youtube headers path", shared.ErrMissingCredentials)
	}

	y.authFile = authFile
	return nil
}

// Reset drops the memoized uploaded songs.
func (y *YouTubeService) Reset() {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.uploads = nil
}

func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, y.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if y.authFile != "" {
		req.Header.Set("X-Auth-File", y.authFile)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("%w: youtube music (status %d): %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("%w: youtube music status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ListConfiguredPlaylists loads every library playlist with contents and keeps those named in names.
//
// Calls GET /api/library/playlists/contents on the proxy.
func (y *YouTubeService) ListConfiguredPlaylists(ctx context.Context, names []string) ([]models.PlaylistRecord, error) {
	var contents []YouTubePlaylistContents
	if err := y.doRequest(ctx, http.MethodGet, "/api/library/playlists/contents", &contents); err != nil {
		return nil, err
	}
	y.logger.Debug("loaded library playlists", "count", len(contents))

	var records []models.PlaylistRecord
	for _, p := range contents {
		if !slices.Contains(names, p.Name) {
			continue
		}
		records = append(records, playlistRecord(p))
	}
	return records, nil
}

// UploadedSongsByID returns uploaded songs keyed by video id. The lookup is fetched once until [YouTubeService.Reset].
//
// Calls GET /api/uploads/songs on the proxy.
func (y *YouTubeService) UploadedSongsByID(ctx context.Context) (map[string]models.TrackMetadata, error) {
	y.mu.Lock()
	defer y.mu.Unlock()

	if y.uploads != nil {
		return y.uploads, nil
	}

	var songs []YouTubeTrack
	if err := y.doRequest(ctx, http.MethodGet, "/api/uploads/songs", &songs); err != nil {
		return nil, err
	}

	uploads := make(map[string]models.TrackMetadata, len(songs))
	for _, s := range songs {
		if s.VideoID == "" {
			continue
		}
		uploads[s.VideoID] = *trackMetadata(&s)
	}
	y.logger.Debug("loaded uploaded songs", "count", len(uploads))

	y.uploads = uploads
	return uploads, nil
}

func playlistRecord(p YouTubePlaylistContents) models.PlaylistRecord {
	record := models.PlaylistRecord{
		ID:           p.ID,
		Name:         p.Name,
		LastModified: p.LastModified.Time,
		Entries:      make([]models.PlaylistEntry, 0, len(p.Tracks)),
	}

	for _, e := range p.Tracks {
		record.Entries = append(record.Entries, models.PlaylistEntry{
			TrackID: e.TrackID,
			Track:   trackMetadata(e.Track),
		})
	}
	return record
}

// trackMetadata converts a proxy track. Tracks without a title carry no usable metadata and yield nil.
func trackMetadata(t *YouTubeTrack) *models.TrackMetadata {
	if t == nil || t.Title == "" {
		return nil
	}

	meta := &models.TrackMetadata{ID: t.VideoID, Title: t.Title}
	for _, a := range t.Artists {
		meta.Artists = append(meta.Artists, models.Artist{ID: a.ID, Name: a.Name})
	}
	if t.Album != nil {
		meta.Album = models.Album{ID: t.Album.ID, Name: t.Album.Name}
	}
	return meta
}
