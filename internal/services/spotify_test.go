package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/shared"
	"golang.org/x/oauth2"
)

func testCredentials() shared.SpotifyConfig {
	return shared.SpotifyConfig{ClientID: "test_client_id", ClientSecret: "test_client_secret"}
}

// newTestSpotify returns an authenticated service pointed at handler.
func newTestSpotify(t *testing.T, handler http.Handler, opts SpotifyOptions) *SpotifyService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts.BaseURL = server.URL
	opts.HTTPClient = server.Client()
	srv, err := NewSpotifyService(testCredentials(), opts)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	if err := srv.OAuthenticate(context.Background(), &oauth2.Token{AccessToken: "test_access_token"}); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	return srv
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials(), SpotifyOptions{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
			if srv.config.RedirectURL != "http://127.0.0.1:3000/callback" {
				t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(shared.SpotifyConfig{ClientSecret: "s"}, SpotifyOptions{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(shared.SpotifyConfig{ClientID: "id"}, SpotifyOptions{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials(), SpotifyOptions{})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")
		for _, want := range []string{"accounts.spotify.com", "test_client_id", "test_state", "playlist-modify-private"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL %q should contain %q", authURL, want)
			}
		}
	})

	t.Run("OAuthenticate", func(t *testing.T) {
		srv, _ := NewSpotifyService(testCredentials(), SpotifyOptions{})

		if err := srv.OAuthenticate(context.Background(), nil); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if _, err := srv.Token(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated before authentication, got %v", err)
		}

		if err := srv.OAuthenticate(context.Background(), &oauth2.Token{AccessToken: "abc"}); err != nil {
			t.Fatal(err)
		}
		tok, err := srv.Token()
		if err != nil || tok.AccessToken != "abc" {
			t.Errorf("Token() = %v, %v", tok, err)
		}
	})

	t.Run("requests before authentication fail", func(t *testing.T) {
		srv, _ := NewSpotifyService(testCredentials(), SpotifyOptions{})
		_, err := srv.GetPlaylistTracks(context.Background(), "spotify:playlist:1")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Service Interface", func(t *testing.T) {
		var _ TargetService = (*SpotifyService)(nil)
		var _ OAuthService = (*SpotifyService)(nil)
		var _ SourceService = (*YouTubeService)(nil)
	})
}

func TestSpotifyService_GetOrCreatePlaylist(t *testing.T) {
	t.Run("pages, filters owners and creates missing", func(t *testing.T) {
		var mu sync.Mutex
		var created []map[string]any
		listCalls := 0

		mux := http.NewServeMux()
		mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			listCalls++
			mu.Unlock()

			if got := r.Header.Get("Authorization"); got != "Bearer test_access_token" {
				t.Errorf("Authorization = %q", got)
			}

			if r.URL.Query().Get("offset") == "0" {
				next := fmt.Sprintf("http://%s/me/playlists?limit=50&offset=50", r.Host)
				fmt.Fprintf(w, `{"items": [
					{"id": "p1", "name": "Road Trip", "owner": {"id": "me"}, "uri": "spotify:playlist:p1"},
					{"id": "p2", "name": "Focus", "owner": {"id": "someone"}, "uri": "spotify:playlist:p2"}
				], "next": %q}`, next)
				return
			}
			w.Write([]byte(`{"items": [{"id": "p3", "name": "Chill", "owner": {"id": "me"}}], "next": null}`))
		})
		mux.HandleFunc("/users/me/playlists", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			mu.Lock()
			created = append(created, body)
			mu.Unlock()
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, `{"id": "new1", "name": %q, "owner": {"id": "me"}, "uri": "spotify:playlist:new1", "public": true}`, body["name"])
		})

		srv := newTestSpotify(t, mux, SpotifyOptions{Username: "me", CreatePublic: true})
		ctx := context.Background()

		p, err := srv.GetOrCreatePlaylist(ctx, "Road Trip")
		if err != nil {
			t.Fatalf("GetOrCreatePlaylist() error = %v", err)
		}
		if p.ID != "p1" || p.URI != "spotify:playlist:p1" {
			t.Errorf("unexpected playlist %+v", p)
		}

		chill, err := srv.GetOrCreatePlaylist(ctx, "Chill")
		if err != nil || chill.URI != "spotify:playlist:p3" {
			t.Errorf("expected second page playlist with derived uri, got %+v, %v", chill, err)
		}

		focus, err := srv.GetOrCreatePlaylist(ctx, "Focus")
		if err != nil {
			t.Fatalf("GetOrCreatePlaylist(Focus) error = %v", err)
		}
		if focus.ID != "new1" {
			t.Errorf("playlist owned by another user should not be reused, got %+v", focus)
		}

		again, err := srv.GetOrCreatePlaylist(ctx, "Focus")
		if err != nil || again.ID != "new1" {
			t.Errorf("created playlist should be cached, got %+v, %v", again, err)
		}

		if len(created) != 1 {
			t.Fatalf("expected 1 create call, got %d", len(created))
		}
		if created[0]["name"] != "Focus" || created[0]["public"] != true {
			t.Errorf("unexpected create body %v", created[0])
		}
		if listCalls != 2 {
			t.Errorf("expected playlists to be listed once (2 pages), got %d requests", listCalls)
		}

		srv.Reset()
		if _, err := srv.GetOrCreatePlaylist(ctx, "Road Trip"); err != nil {
			t.Fatal(err)
		}
		if listCalls != 4 {
			t.Errorf("expected Reset to force a reload, got %d requests", listCalls)
		}
	})

	t.Run("duplicate names are fatal", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items": [
				{"id": "p1", "name": "Road Trip", "owner": {"id": "me"}},
				{"id": "p2", "name": "Road Trip", "owner": {"id": "me"}}
			], "next": null}`))
		})

		srv := newTestSpotify(t, mux, SpotifyOptions{Username: "me"})
		_, err := srv.GetOrCreatePlaylist(context.Background(), "Anything")
		if !errors.Is(err, shared.ErrDuplicatePlaylist) {
			t.Fatalf("expected ErrDuplicatePlaylist, got %v", err)
		}
	})

	t.Run("user id from profile", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id": "profile-user"}`))
		})
		mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items": [{"id": "p1", "name": "Mine", "owner": {"id": "profile-user"}}], "next": null}`))
		})

		srv := newTestSpotify(t, mux, SpotifyOptions{})
		p, err := srv.GetOrCreatePlaylist(context.Background(), "Mine")
		if err != nil || p.ID != "p1" {
			t.Errorf("GetOrCreatePlaylist() = %+v, %v", p, err)
		}
	})
}

func TestSpotifyService_GetPlaylistTracks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/playlists/abc/tracks", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "0" {
			next := fmt.Sprintf("http://%s/playlists/abc/tracks?limit=100&offset=100", r.Host)
			fmt.Fprintf(w, `{"items": [
				{"added_at": "2024-01-02T03:04:05Z", "track": {"id": "t1", "name": "Alright", "uri": "spotify:track:t1",
					"artists": [{"name": "Kendrick Lamar"}], "album": {"name": "To Pimp a Butterfly"}}},
				{"added_at": "", "track": null}
			], "next": %q}`, next)
			return
		}
		w.Write([]byte(`{"items": [{"added_at": "2024-03-01T00:00:00Z", "track": {"id": "t2", "name": "Humble", "uri": "spotify:track:t2"}}], "next": null}`))
	})

	srv := newTestSpotify(t, mux, SpotifyOptions{})
	tracks, err := srv.GetPlaylistTracks(context.Background(), "spotify:playlist:abc")
	if err != nil {
		t.Fatalf("GetPlaylistTracks() error = %v", err)
	}

	if len(tracks.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(tracks.Items))
	}
	if tracks.Items[0].Track.URI != "spotify:track:t1" || tracks.Items[0].Track.Album.Name != "To Pimp a Butterfly" {
		t.Errorf("unexpected first item %+v", tracks.Items[0].Track)
	}
	if tracks.Items[1].Track != nil || !tracks.Items[1].AddedAt.IsZero() {
		t.Errorf("expected empty item, got %+v", tracks.Items[1])
	}

	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := tracks.LatestAddition(); !got.Equal(want) {
		t.Errorf("LatestAddition() = %v, want %v", got, want)
	}
}

func TestSpotifyService_Search(t *testing.T) {
	var query map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query = map[string]string{"q": q.Get("q"), "type": q.Get("type"), "market": q.Get("market"), "limit": q.Get("limit")}
		w.Write([]byte(`{"tracks": {"items": [
			{"id": "t1", "name": "Run", "uri": "spotify:track:t1", "artists": [{"name": "Artist X"}, {"name": "Jane Doe"}], "album": {"name": "Album"}},
			{"id": "t2", "name": "Run", "uri": "spotify:track:t2", "artists": [{"name": "Other"}], "album": {"name": "Album"}}
		]}}`))
	})

	srv := newTestSpotify(t, mux, SpotifyOptions{SearchRate: 100})
	q := `track:"Run" artist:"Artist X" album:"Album"`
	results, err := srv.Search(context.Background(), q, "from_token", "track", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if query["q"] != q || query["type"] != "track" || query["market"] != "from_token" || query["limit"] != "10" {
		t.Errorf("unexpected query %v", query)
	}
	if len(results.Tracks) != 2 || results.Tracks[0].URI != "spotify:track:t1" {
		t.Errorf("expected ranked results, got %+v", results.Tracks)
	}
	if names := results.Tracks[0].ArtistNames(); len(names) != 2 || names[1] != "Jane Doe" {
		t.Errorf("ArtistNames() = %v", names)
	}

	t.Run("cancelled context", func(t *testing.T) {
		slow := newTestSpotify(t, mux, SpotifyOptions{SearchRate: 0.001})
		ctx := context.Background()
		if _, err := slow.Search(ctx, "q", "", "track", 1); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := slow.Search(ctx, "q", "", "track", 1); err == nil {
			t.Error("expected limiter wait to fail on a cancelled context")
		}
	})
}

func TestSpotifyService_AddTracksToPlaylist(t *testing.T) {
	var mu sync.Mutex
	var batches [][]string

	mux := http.NewServeMux()
	mux.HandleFunc("/playlists/p1/tracks", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var body struct {
			URIs []string `json:"uris"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		mu.Lock()
		batches = append(batches, body.URIs)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"snapshot_id": "s"}`))
	})

	srv := newTestSpotify(t, mux, SpotifyOptions{})
	playlist := &models.TargetPlaylist{ID: "p1", URI: "spotify:playlist:p1"}
	ctx := context.Background()

	if err := srv.AddTracksToPlaylist(ctx, playlist, nil); err != nil {
		t.Fatal(err)
	}
	if len(batches) != 0 {
		t.Fatalf("expected no request for an empty list, got %d", len(batches))
	}

	ids := make([]string, 150)
	for i := range ids {
		ids[i] = fmt.Sprintf("spotify:track:%d", i)
	}
	if err := srv.AddTracksToPlaylist(ctx, playlist, ids); err != nil {
		t.Fatalf("AddTracksToPlaylist() error = %v", err)
	}

	if len(batches) != 2 || len(batches[0]) != AddTracksChunk || len(batches[1]) != 50 {
		t.Fatalf("unexpected batches %d", len(batches))
	}
	if batches[1][49] != "spotify:track:149" {
		t.Errorf("order not preserved: %s", batches[1][49])
	}
}

func TestSpotifyService_Errors(t *testing.T) {
	tc := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: shared.ErrNotAuthenticated},
		{name: "server error", status: http.StatusInternalServerError, want: shared.ErrAPIRequest},
		{name: "rate limited", status: http.StatusTooManyRequests, want: shared.ErrAPIRequest},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprintf(w, `{"error": {"status": %d, "message": "nope"}}`, tt.status)
			}), SpotifyOptions{})

			_, err := srv.Search(context.Background(), "q", "", "track", 1)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !strings.Contains(err.Error(), "nope") {
				t.Errorf("expected API message in error, got %v", err)
			}
		})
	}
}

func TestParseAddedAt(t *testing.T) {
	got, err := ParseAddedAt("2024-01-02T03:04:05Z")
	if err != nil || !got.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("ParseAddedAt() = %v, %v", got, err)
	}

	if got, err := ParseAddedAt(""); err != nil || !got.IsZero() {
		t.Errorf("empty added_at should be zero, got %v, %v", got, err)
	}

	if _, err := ParseAddedAt("yesterday"); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPlaylistIDFromURI(t *testing.T) {
	tc := map[string]string{
		"spotify:playlist:abc": "abc",
		"abc":                  "abc",
		"":                     "",
	}
	for in, want := range tc {
		if got := PlaylistIDFromURI(in); got != want {
			t.Errorf("PlaylistIDFromURI(%q) = %q, want %q", in, got, want)
		}
	}
}
