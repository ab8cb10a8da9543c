package matching

import (
	"fmt"
	"strings"

	"github.com/desertthunder/playsync/internal/models"
)

// Track is the canonical identity of a source-playlist entry.
//
// A Track with an empty title is empty: callers must check [Track.IsEmpty] and skip it rather than match it.
type Track struct {
	Title  string
	Artist string
	Album  string

	resolvedID string
}

// NewTrack builds a Track from the raw title, artist and album strings.
func NewTrack(title, artist, album string) *Track {
	return &Track{Title: title, Artist: artist, Album: album}
}

// FromMetadata builds a Track from a source-platform record. Multiple artists are joined with " & ", which
// normalizes to the same " and " separator the matcher uses for candidate artists.
func FromMetadata(meta *models.TrackMetadata) *Track {
	if meta == nil {
		return &Track{}
	}
	return &Track{
		Title:  meta.Title,
		Artist: strings.Join(meta.ArtistNames(), " & "),
		Album:  meta.Album.Name,
	}
}

// IsEmpty reports whether the track has no title.
func (t *Track) IsEmpty() bool {
	return t == nil || t.Title == ""
}

// Resolve records the target-platform identifier of the confirmed match.
func (t *Track) Resolve(id string) {
	t.resolvedID = id
}

// ResolvedID returns the target identifier and whether one has been set.
func (t *Track) ResolvedID() (string, bool) {
	return t.resolvedID, t.resolvedID != ""
}

// SearchTitle is the title with featured artists dropped and edition/version brackets flattened.
func (t *Track) SearchTitle() string {
	title := t.Title

	if m, ok := MatchFeaturing(title); ok {
		title = m.Title
	}
	if m, ok := MatchEdition(title); ok {
		title = m.Joined()
	}
	if m, ok := MatchVersion(title); ok {
		title = m.Joined()
	}

	return title
}

// SearchAlbum is the album with uninformative editions ("Standard", "Explicit", regional) and
// "Single Version" dropped and any other edition/version brackets flattened.
func (t *Track) SearchAlbum() string {
	album := t.Album

	if m, ok := MatchEdition(album); ok {
		if droppedAlbumEdition.MatchString(m.Label) {
			album = m.Title
		} else {
			album = m.Joined()
		}
	}
	if m, ok := MatchVersion(album); ok {
		if droppedAlbumVersion.MatchString(m.Label) {
			album = m.Title
		} else {
			album = m.Joined()
		}
	}

	return album
}

// SearchQuery composes the target-platform field query from the search forms.
func (t *Track) SearchQuery() string {
	return fmt.Sprintf(`track:"%s" artist:"%s" album:"%s"`, t.SearchTitle(), t.Artist, t.SearchAlbum())
}

// Matches reports whether meta denotes the same work as t.
func (t *Track) Matches(meta models.TrackMetadata) bool {
	return Matches(t, meta)
}

func (t *Track) String() string {
	s := fmt.Sprintf("'%s' by %s from the album %s", t.Title, t.Artist, t.Album)
	if id, ok := t.ResolvedID(); ok {
		s += " uri:" + id
	}
	return s
}
