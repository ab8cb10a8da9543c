// package services defines the source and target platform interfaces and their HTTP implementations
//
// YouTube Music (via proxy) is the source, Spotify the target.
package services

import (
	"context"

	"github.com/desertthunder/playsync/internal/models"
	"golang.org/x/oauth2"
)

// SourceService reads the playlists to be mirrored.
type SourceService interface {
	// Name returns the name of the service (e.g., "YouTube Music")
	Name() string

	// ListConfiguredPlaylists returns the library playlists whose names appear in names, in library order,
	// each with its last-modified instant and entries.
	ListConfiguredPlaylists(ctx context.Context, names []string) ([]models.PlaylistRecord, error)

	// UploadedSongsByID returns the user's uploaded songs keyed by track identifier.
	UploadedSongsByID(ctx context.Context) (map[string]models.TrackMetadata, error)

	// Reset clears any per-run caches.
	Reset()
}

// TargetService is the platform playlists are mirrored into.
type TargetService interface {
	// Name returns the name of the service (e.g., "Spotify")
	Name() string

	// Reset clears any per-run caches.
	Reset()

	// GetOrCreatePlaylist returns the authenticated user's playlist with the exact name, creating it when absent.
	GetOrCreatePlaylist(ctx context.Context, name string) (*models.TargetPlaylist, error)

	// GetPlaylistTracks returns every item in the playlist with its addition instant.
	GetPlaylistTracks(ctx context.Context, playlistURI string) (*models.PlaylistTracks, error)

	// Search queries the catalog and returns candidates in ranked order.
	Search(ctx context.Context, query, market, kind string, limit int) (*models.SearchResults, error)

	// AddTracksToPlaylist appends tracks by identifier.
	AddTracksToPlaylist(ctx context.Context, playlist *models.TargetPlaylist, trackIDs []string) error
}

// OAuthService is implemented by services that authorize through the OAuth2 code flow.
type OAuthService interface {
	GetAuthURL(state string) string
	GetOAuthConfig() *oauth2.Config
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
	Token() (*oauth2.Token, error)
}
