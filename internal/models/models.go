// package models defines the data model for the playlist sync service
package models

import (
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Artist is a credited artist on a track.
type Artist struct {
	ID   string
	Name string
}

// Album is the release a track belongs to.
type Album struct {
	ID   string
	Name string
}

// TrackMetadata is the shape both platforms are mapped into before the core sees them.
type TrackMetadata struct {
	ID      string
	URI     string
	Title   string
	Artists []Artist
	Album   Album
}

// ArtistNames returns the names of all credited artists in order.
func (t TrackMetadata) ArtistNames() []string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return names
}

// TargetID returns the identifier used when adding the track to a target playlist, preferring the URI.
func (t TrackMetadata) TargetID() string {
	if t.URI != "" {
		return t.URI
	}
	return t.ID
}

// PlaylistEntry is one slot of a source playlist. Track is nil when the platform returned no embedded metadata.
type PlaylistEntry struct {
	TrackID string
	Track   *TrackMetadata
}

// PlaylistRecord is a source playlist with its entries.
type PlaylistRecord struct {
	ID           string
	Name         string
	LastModified time.Time
	Entries      []PlaylistEntry
}

// TrackCount counts only entries that carry embedded metadata.
func (p PlaylistRecord) TrackCount() int {
	n := 0
	for _, e := range p.Entries {
		if e.Track != nil {
			n++
		}
	}
	return n
}

// TargetPlaylist is a playlist handle on the target platform.
type TargetPlaylist struct {
	ID      string
	URI     string
	Name    string
	OwnerID string
	Public  bool
}

// PlaylistItem is one entry of a target playlist.
type PlaylistItem struct {
	Track   *TrackMetadata
	AddedAt time.Time
}

// PlaylistTracks is the content of a target playlist.
type PlaylistTracks struct {
	Items []PlaylistItem
}

// LatestAddition returns the most recent added-at instant, or the zero time when no entry carries one.
func (p PlaylistTracks) LatestAddition() time.Time {
	var latest time.Time
	for _, item := range p.Items {
		if item.AddedAt.After(latest) {
			latest = item.AddedAt
		}
	}
	return latest
}

// SearchResults holds the first page of track results of a target-platform search.
type SearchResults struct {
	Tracks []TrackMetadata
}
