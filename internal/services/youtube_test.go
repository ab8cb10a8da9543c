package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/playsync/internal/shared"
)

func TestYouTubeService(t *testing.T) {
	t.Run("NewYouTubeService", func(t *testing.T) {
		t.Run("creates service with default URL", func(t *testing.T) {
			if svc := NewYouTubeService("", nil); svc.baseURL != defaultYTBaseURL {
				t.Errorf("expected baseURL to be %s, got %s", defaultYTBaseURL, svc.baseURL)
			}
		})

		t.Run("trims trailing slash", func(t *testing.T) {
			if svc := NewYouTubeService("http://localhost:9000/", nil); svc.baseURL != "http://localhost:9000" {
				t.Errorf("unexpected baseURL %s", svc.baseURL)
			}
		})
	})

	t.Run("Name", func(t *testing.T) {
		if svc := NewYouTubeService("", nil); svc.Name() != "YouTube Music" {
			t.Errorf("expected name to be 'YouTube Music', got %s", svc.Name())
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		svc := NewYouTubeService("", nil)

		if err := svc.Authenticate("/path/to/browser.json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if svc.authFile != "/path/to/browser.json" {
			t.Errorf("unexpected authFile %s", svc.authFile)
		}

		if err := svc.Authenticate(""); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("ListConfiguredPlaylists", func(t *testing.T) {
		body := `[
			{"id": "PL1", "name": "Road Trip", "lastModifiedTimestamp": "1600000000123456", "tracks": [
				{"trackId": "v1", "track": {"videoId": "v1", "title": "Alright", "artists": [{"name": "Kendrick Lamar", "id": "a1"}], "album": {"name": "To Pimp a Butterfly", "id": "al1"}}},
				{"trackId": "up1", "track": null}
			]},
			{"id": "PL2", "name": "Ignored", "lastModifiedTimestamp": 1600000000000000, "tracks": []},
			{"id": "PL3", "name": "Focus", "tracks": [
				{"trackId": "v2", "track": {"videoId": "v2", "title": "Intro", "artists": [], "album": null}}
			]}
		]`

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/library/playlists/contents" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.Header.Get("X-Auth-File") != "browser.json" {
				t.Errorf("expected X-Auth-File header, got %q", r.Header.Get("X-Auth-File"))
			}
			w.Write([]byte(body))
		}))
		defer server.Close()

		svc := NewYouTubeService(server.URL, nil)
		svc.Authenticate("browser.json")

		records, err := svc.ListConfiguredPlaylists(context.Background(), []string{"Focus", "Road Trip", "Missing"})
		if err != nil {
			t.Fatalf("ListConfiguredPlaylists() error = %v", err)
		}

		if len(records) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(records))
		}
		if records[0].Name != "Road Trip" || records[1].Name != "Focus" {
			t.Errorf("expected library order, got %s, %s", records[0].Name, records[1].Name)
		}

		road := records[0]
		want := time.Date(2020, 9, 13, 12, 26, 40, 123456000, time.UTC)
		if !road.LastModified.Equal(want) {
			t.Errorf("LastModified = %v, want %v", road.LastModified, want)
		}
		if road.TrackCount() != 1 {
			t.Errorf("TrackCount() = %d, want 1", road.TrackCount())
		}
		if road.Entries[1].TrackID != "up1" || road.Entries[1].Track != nil {
			t.Errorf("expected entry without metadata, got %+v", road.Entries[1])
		}
		if got := road.Entries[0].Track.ArtistNames(); len(got) != 1 || got[0] != "Kendrick Lamar" {
			t.Errorf("ArtistNames() = %v", got)
		}

		if !records[1].LastModified.IsZero() {
			t.Errorf("missing timestamp should be unknown, got %v", records[1].LastModified)
		}
	})

	t.Run("UploadedSongsByID is memoized until Reset", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if r.URL.Path != "/api/uploads/songs" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode([]YouTubeTrack{
				{VideoID: "up1", Title: "Demo", Artists: []YouTubeArtist{{Name: "Me"}}, Album: &youtubeAlbum{Name: "Tapes"}},
				{VideoID: "", Title: "No id"},
			})
		}))
		defer server.Close()

		svc := NewYouTubeService(server.URL, nil)
		ctx := context.Background()

		uploads, err := svc.UploadedSongsByID(ctx)
		if err != nil {
			t.Fatalf("UploadedSongsByID() error = %v", err)
		}
		if len(uploads) != 1 || uploads["up1"].Title != "Demo" || uploads["up1"].Album.Name != "Tapes" {
			t.Errorf("unexpected uploads %+v", uploads)
		}

		if _, err := svc.UploadedSongsByID(ctx); err != nil {
			t.Fatal(err)
		}
		if calls.Load() != 1 {
			t.Errorf("expected 1 request, got %d", calls.Load())
		}

		svc.Reset()
		if _, err := svc.UploadedSongsByID(ctx); err != nil {
			t.Fatal(err)
		}
		if calls.Load() != 2 {
			t.Errorf("expected a new request after Reset, got %d", calls.Load())
		}
	})

	t.Run("error detail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "headers expired"}`))
		}))
		defer server.Close()

		_, err := NewYouTubeService(server.URL, nil).ListConfiguredPlaylists(context.Background(), []string{"A"})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestParseMicros(t *testing.T) {
	tc := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{name: "microseconds", raw: "1600000000000000", want: time.Unix(1600000000, 0).UTC()},
		{name: "zero is unknown", raw: "0", want: time.Time{}},
		{name: "garbage", raw: "yesterday", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMicros(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMicros(%q) error = %v", tt.raw, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseMicros(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMicroTimestamp_UnmarshalJSON(t *testing.T) {
	var v struct {
		A MicroTimestamp `json:"a"`
		B MicroTimestamp `json:"b"`
		C MicroTimestamp `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": "1000000", "b": 2000000, "c": null}`), &v); err != nil {
		t.Fatal(err)
	}
	if v.A.Unix() != 1 || v.B.Unix() != 2 || !v.C.IsZero() {
		t.Errorf("unexpected timestamps %v %v %v", v.A, v.B, v.C)
	}

	if err := json.Unmarshal([]byte(`{"a": "soon"}`), &v); err == nil {
		t.Error("expected error for non-numeric timestamp")
	}
}
