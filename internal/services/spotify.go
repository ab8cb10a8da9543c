// Spotify Web API implementation of [TargetService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	spotifyPlaylistPage = 50
	spotifyTracksPage   = 100
	// AddTracksChunk is the maximum number of URIs Spotify accepts per add request.
	AddTracksChunk = 100
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	Album   SpotifyAlbum    `json:"album"`
	URI     string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Owner  Owner  `json:"owner"`
	Public bool   `json:"public"`
	URI    string `json:"uri"`
}

// SpotifyPlaylistTrack represents a track within a playlist context. Track is null for removed or unavailable items.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

type paging[T any] struct {
	Items  []T     `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

type searchResponse struct {
	Tracks paging[SpotifyTrack] `json:"tracks"`
}

type spotifyError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyOptions configures a [SpotifyService]. Zero values select the public API and no throttling.
type SpotifyOptions struct {
	BaseURL      string
	AuthURL      string
	TokenURL     string
	Username     string
	CreatePublic bool
	SearchRate   float64 // search requests per second
	HTTPClient   *http.Client
	Logger       *log.Logger
}

// SpotifyService implements [TargetService] and [OAuthService] for the Spotify Web API.
//
// Uses [oauth2] for authentication; the client refreshes expired access tokens on its own.
type SpotifyService struct {
	config       *oauth2.Config
	baseURL      string
	baseClient   *http.Client
	createPublic bool
	limiter      *rate.Limiter
	logger       *log.Logger

	tokenSource oauth2.TokenSource
	client      *http.Client

	mu        sync.Mutex
	userID    string
	playlists map[string]*models.TargetPlaylist
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials shared.SpotifyConfig, opts SpotifyOptions) (*SpotifyService, error) {
	if credentials.ClientID == "" {
		return nil, fmt.Errorf("%w: missing spotify client_id", shared.ErrMissingCredentials)
	}
	if credentials.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing spotify client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := credentials.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://127.0.0.1:3000/callback"
	}

	authURL, tokenURL := opts.AuthURL, opts.TokenURL
	if authURL == "" {
		authURL = spotifyAuthURL
	}
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.SearchRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.SearchRate), 1)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	username := opts.Username
	if username == "" {
		username = credentials.Username
	}

	return &SpotifyService{
		config: &oauth2.Config{
			ClientID:     credentials.ClientID,
			ClientSecret: credentials.ClientSecret,
			RedirectURL:  redirectURI,
			Scopes: []string{
				"playlist-read-private",
				"playlist-modify-public",
				"playlist-modify-private",
				"user-read-private",
			},
			Endpoint: oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL},
		},
		baseURL:      strings.TrimRight(baseURL, "/"),
		baseClient:   httpClient,
		createPublic: opts.CreatePublic,
		limiter:      limiter,
		logger:       shared.WithLogger(logger, "service", "spotify"),
		userID:       username,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the OAuth2 configuration used for the code exchange.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// OAuthenticate installs token and builds a client that refreshes it when it expires.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: no spotify access token, run `playsync auth spotify`", shared.ErrNotAuthenticated)
	}

	ctx = context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, s.baseClient)
	s.tokenSource = s.config.TokenSource(ctx, token)
	s.client = oauth2.NewClient(ctx, s.tokenSource)
	return nil
}

// Token returns the current token, refreshed if it had expired.
func (s *SpotifyService) Token() (*oauth2.Token, error) {
	if s.tokenSource == nil {
		return nil, shared.ErrNotAuthenticated
	}

	tok, err := s.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return tok, nil
}

// Reset clears the playlist name cache so the next lookup reloads it.
func (s *SpotifyService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlists = nil
}

// doRequest performs an authenticated request. endpoint is either a path below the API root or an absolute paging URL.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if s.client == nil {
		return fmt.Errorf("%w: call OAuthenticate first", shared.ErrNotAuthenticated)
	}

	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		apiURL = s.baseURL + endpoint
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr spotifyError
		msg := http.StatusText(resp.StatusCode)
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: spotify: %s", shared.ErrNotAuthenticated, msg)
		}
		return fmt.Errorf("%w: spotify %s %s (status %d): %s", shared.ErrAPIRequest, method, endpoint, resp.StatusCode, msg)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// currentUserID returns the configured username, falling back to the profile of the token owner.
func (s *SpotifyService) currentUserID(ctx context.Context) (string, error) {
	if s.userID != "" {
		return s.userID, nil
	}

	user, err := s.UserProfile(ctx)
	if err != nil {
		return "", err
	}
	s.userID = user.ID
	return s.userID, nil
}

// loadPlaylists builds the name index of the user's own playlists. Must be called with s.mu held.
func (s *SpotifyService) loadPlaylists(ctx context.Context) error {
	if s.playlists != nil {
		return nil
	}

	userID, err := s.currentUserID(ctx)
	if err != nil {
		return err
	}

	playlists := make(map[string]*models.TargetPlaylist)
	next := fmt.Sprintf("/me/playlists?limit=%d&offset=0", spotifyPlaylistPage)
	for next != "" {
		var page paging[SpotifySimplePlaylist]
		if err := s.doRequest(ctx, http.MethodGet, next, nil, &page); err != nil {
			return err
		}

		for _, p := range page.Items {
			if p.Owner.ID != userID {
				s.logger.Debug("skipping playlist owned by a different user", "playlist", p.Name, "owner", p.Owner.ID)
				continue
			}
			if _, dup := playlists[p.Name]; dup {
				return fmt.Errorf("%w: %q", shared.ErrDuplicatePlaylist, p.Name)
			}
			playlists[p.Name] = targetPlaylist(p)
		}

		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}

	s.logger.Debug("loaded playlists", "count", len(playlists))
	s.playlists = playlists
	return nil
}

// GetOrCreatePlaylist returns the user's playlist named name, creating it when it does not exist.
//
// Names must be unique among the user's own playlists; a duplicate is reported as [shared.ErrDuplicatePlaylist].
func (s *SpotifyService) GetOrCreatePlaylist(ctx context.Context, name string) (*models.TargetPlaylist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadPlaylists(ctx); err != nil {
		return nil, err
	}

	if p, ok := s.playlists[name]; ok {
		return p, nil
	}

	s.logger.Info("playlist doesn't exist", "playlist", name)

	body := struct {
		Name   string `json:"name"`
		Public bool   `json:"public"`
	}{Name: name, Public: s.createPublic}

	var created SpotifySimplePlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(s.userID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}

	p := targetPlaylist(created)
	s.playlists[name] = p
	s.logger.Info("playlist created", "playlist", name, "id", p.ID)
	return p, nil
}

// GetPlaylistTracks retrieves every item of the playlist, following pagination.
func (s *SpotifyService) GetPlaylistTracks(ctx context.Context, playlistURI string) (*models.PlaylistTracks, error) {
	id := PlaylistIDFromURI(playlistURI)
	if id == "" {
		return nil, fmt.Errorf("%w: playlist uri %q", shared.ErrInvalidInput, playlistURI)
	}

	tracks := &models.PlaylistTracks{}
	next := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=0", url.PathEscape(id), spotifyTracksPage)
	for next != "" {
		var page paging[SpotifyPlaylistTrack]
		if err := s.doRequest(ctx, http.MethodGet, next, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			addedAt, err := ParseAddedAt(item.AddedAt)
			if err != nil {
				s.logger.Debug("ignoring unparseable added_at", "value", item.AddedAt, "error", err)
			}

			var meta *models.TrackMetadata
			if item.Track != nil {
				meta = spotifyTrackMetadata(*item.Track)
			}
			tracks.Items = append(tracks.Items, models.PlaylistItem{Track: meta, AddedAt: addedAt})
		}

		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}

	return tracks, nil
}

// Search runs a catalog search, waiting on the configured rate limit first.
func (s *SpotifyService) Search(ctx context.Context, query, market, kind string, limit int) (*models.SearchResults, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", kind)
	if market != "" {
		params.Set("market", market)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var response searchResponse
	if err := s.doRequest(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}

	results := &models.SearchResults{Tracks: make([]models.TrackMetadata, 0, len(response.Tracks.Items))}
	for _, t := range response.Tracks.Items {
		results.Tracks = append(results.Tracks, *spotifyTrackMetadata(t))
	}
	return results, nil
}

// AddTracksToPlaylist appends tracks by URI in chunks of [AddTracksChunk]. No request is made for an empty list.
func (s *SpotifyService) AddTracksToPlaylist(ctx context.Context, playlist *models.TargetPlaylist, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}
	if playlist == nil || playlist.ID == "" {
		return fmt.Errorf("%w: playlist has no id", shared.ErrInvalidInput)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlist.ID))
	for start := 0; start < len(trackIDs); start += AddTracksChunk {
		end := min(start+AddTracksChunk, len(trackIDs))

		body := struct {
			URIs []string `json:"uris"`
		}{URIs: trackIDs[start:end]}

		if err := s.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
			return err
		}
	}
	return nil
}

// ParseAddedAt parses Spotify's ISO-8601 added_at. An empty value is the zero time.
func ParseAddedAt(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: added_at %q", shared.ErrInvalidInput, value)
	}
	return t.UTC(), nil
}

// PlaylistIDFromURI extracts the id from "spotify:playlist:ID". Bare ids are returned unchanged.
func PlaylistIDFromURI(uri string) string {
	if i := strings.LastIndex(uri, ":"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

func targetPlaylist(p SpotifySimplePlaylist) *models.TargetPlaylist {
	uri := p.URI
	if uri == "" && p.ID != "" {
		uri = "spotify:playlist:" + p.ID
	}
	return &models.TargetPlaylist{
		ID:      p.ID,
		URI:     uri,
		Name:    p.Name,
		OwnerID: p.Owner.ID,
		Public:  p.Public,
	}
}

func spotifyTrackMetadata(t SpotifyTrack) *models.TrackMetadata {
	meta := &models.TrackMetadata{
		ID:    t.ID,
		URI:   t.URI,
		Title: t.Name,
		Album: models.Album{ID: t.Album.ID, Name: t.Album.Name},
	}
	for _, a := range t.Artists {
		meta.Artists = append(meta.Artists, models.Artist{ID: a.ID, Name: a.Name})
	}
	return meta
}
