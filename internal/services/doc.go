// Package services defines the [SourceService] and [TargetService] interfaces and implements them for
// YouTube Music and Spotify.
//
// # Source: YouTube Music
//
// [YouTubeService] communicates with the FastAPI proxy server wrapping ytmusicapi.
// The auth_file path is sent via X-Auth-File header on each request.
//
// Library playlists arrive with a lastModifiedTimestamp in microseconds since the epoch (string or number)
// which is converted with [ParseMicros]. Entries whose track is null carry only a trackId; the reconciler
// falls back to [YouTubeService.UploadedSongsByID] for those.
//
// # Target: Spotify
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh.
//
// The playlist name index is loaded once per run. Only playlists owned by the authenticated user are indexed
// and two owned playlists sharing a name abort the run with [shared.ErrDuplicatePlaylist]. Searches are
// throttled by a [rate.Limiter]; additions are sent in chunks of [AddTracksChunk].
//
// # OAuth Service Extension
//
// The [OAuthService] interface is implemented by [SpotifyService] for the CLI authorization flow.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : no token, or the API answered 401
//   - [shared.ErrAPIRequest] : non-2xx response or transport failure
//   - [shared.ErrDuplicatePlaylist] : ambiguous playlist name on the target
//
// # API Mappings
//
// Both services convert provider-specific JSON into [models.TrackMetadata], [models.PlaylistRecord] and
// [models.PlaylistTracks] so the matching core never sees platform payloads.
package services
