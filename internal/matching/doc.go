// Package matching resolves whether two differently formatted metadata records denote the same musical work.
//
// # Pattern Extraction
//
// Three independent recognizers parse stylistic conventions out of free-text titles and albums:
//   - [MatchFeaturing] : "Song (feat. A, B and C) Suffix", "Song - featuring A"
//   - [MatchVersion] : "Song (Radio Version)"
//   - [MatchEdition] : "Album (Deluxe Edition)", "Album [UK]", "Song (Club Remix)"
//
// Each may match the same input; they are not alternatives of one grammar.
//
// # Track Identity
//
// [Track] carries the source title, artist and album plus the target identifier once resolved.
// [Track.SearchTitle] and [Track.SearchAlbum] derive the forms used to query the target platform.
//
// # Equivalence
//
// [Matches] is rule based: normalized equality first, then a fixed, ordered set of reconstructions
// (featured artists folded into the artist list, version and edition labels re-punctuated). There is no
// similarity score; the first rule that succeeds decides.
package matching
