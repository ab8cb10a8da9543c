package matching

import (
	"strings"

	"github.com/desertthunder/playsync/internal/models"
	"golang.org/x/text/unicode/norm"
)

// Clean normalizes a term for comparison: "&" spelled "and", trimmed, lowercased.
//
// Terms are also folded to Unicode NFC first, so a precomposed "é" and an "e" followed by a
// combining acute accent compare equal.
func Clean(term string) string {
	term = norm.NFC.String(term)
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(term, "&", "and")))
}

// Matches reports whether the candidate record denotes the same work as t. Title, artist and album must all agree.
//
// The check is not symmetric: reconstructions are derived from the local track only.
func Matches(t *Track, candidate models.TrackMetadata) bool {
	if t.IsEmpty() {
		return false
	}
	return titleMatches(t, candidate) && artistMatches(t, candidate) && albumMatches(t, candidate)
}

func candidateArtists(candidate models.TrackMetadata) string {
	names := candidate.ArtistNames()
	for i, n := range names {
		names[i] = Clean(n)
	}
	return strings.Join(names, " and ")
}

func artistMatches(t *Track, candidate models.TrackMetadata) bool {
	local := Clean(t.Artist)
	if local == "" {
		return true
	}
	return strings.Contains(candidateArtists(candidate), local)
}

func titleMatches(t *Track, candidate models.TrackMetadata) bool {
	remote := Clean(candidate.Title)
	local := Clean(t.Title)

	if local == remote {
		return true
	}

	if feat, ok := MatchFeaturing(local); ok {
		artists := candidateArtists(candidate)

		missing := false
		for _, name := range feat.Names() {
			name = Clean(name)
			if name != "" && !strings.Contains(artists, name) {
				missing = true
				break
			}
		}

		if missing {
			return feat.LiteralForm() == remote
		}

		local = feat.Rebuilt()
		if local == remote {
			return true
		}
	}

	if version, ok := MatchVersion(local); ok {
		if version.Dashed() == remote || version.Joined() == remote {
			return true
		}
	}

	if edition, ok := MatchEdition(local); ok {
		if edition.Dashed() == remote || edition.Joined() == remote {
			return true
		}
	}

	return false
}

func albumMatches(t *Track, candidate models.TrackMetadata) bool {
	local := Clean(t.Album)
	remote := Clean(candidate.Album.Name)

	if local == "" {
		return true
	}
	if local == remote {
		return true
	}

	localEdition, localOK := MatchEdition(local)
	remoteEdition, remoteOK := MatchEdition(remote)

	if !localOK && !remoteOK {
		return false
	}

	if localOK {
		if localEdition.Dashed() == remote || localEdition.Joined() == remote {
			return true
		}
		if !remoteOK && localEdition.Title == remote {
			return true
		}
	}

	if remoteOK && remoteEdition.Dashed() == local {
		return true
	}

	if localOK {
		local = localEdition.Title
	}
	if remoteOK {
		remote = remoteEdition.Title
	}

	return local == remote
}
