package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig         = fmt.Errorf("configuration not found")
	ErrInvalidConfig         = fmt.Errorf("invalid configuration")
	ErrMissingCredentials    = fmt.Errorf("missing credentials")
	ErrInvalidCredentials    = fmt.Errorf("invalid credentials")
	ErrNoConfiguredPlaylists = fmt.Errorf("no playlists configured")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrDuplicatePlaylist  = fmt.Errorf("duplicate playlist name")

	// Data errors
	ErrMissingTrackInfo = fmt.Errorf("missing track info")
	ErrReportNotFound   = fmt.Errorf("sync report not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
