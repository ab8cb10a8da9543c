package matching

import (
	"fmt"
	"regexp"
	"strings"
)

// Whitespace classes include Unicode space separators such as NBSP.
var (
	featuringPattern = regexp.MustCompile(`(?i)^(?P<title>.*?)[\s\p{Zs}]+(?:[(-])?[\s\p{Zs}]*feat(?:\.|uring)[\s\p{Zs}]+(?P<featuring>.*?)(?:\)(?:[\s\p{Zs}]+(?P<suffix>.+)?)?)?$`)
	versionPattern   = regexp.MustCompile(`(?i)^(?P<title>.*?)[\s\p{Zs}]+\([\s\p{Zs}]*(?P<version>[^)]*?version[^)]*?)[\s\p{Zs}]*\)$`)
	editionPattern   = regexp.MustCompile(`(?i)^(?P<title>.*?)[\s\p{Zs}]*[(\[][\s\p{Zs}]*(?P<edition>(?:(?:Standard|Deluxe|Web-Only|Exclusive|EP|Explicit|International|Single|US|UK)(?:[\s\p{Zs}]+(?:Edition|Version))?)|(?:.*?Remix.*?))[\s\p{Zs}]*[)\]]$`)

	// Album editions that carry no information for search purposes.
	droppedAlbumEdition = regexp.MustCompile(`(?i)Standard|Explicit|UK|US|International`)
	droppedAlbumVersion = regexp.MustCompile(`(?i)Single Version`)
	featuringSeparator  = regexp.MustCompile(`,| and `)
)

// FeaturingMatch is the result of recognizing a featured-artist annotation, e.g. "Run (feat. Jane Doe) Live".
type FeaturingMatch struct {
	Title     string
	Featuring string
	Suffix    string // text after the closing parenthesis, may be empty
}

// Names splits the featured artists on commas and " and ".
func (f FeaturingMatch) Names() []string {
	return featuringSeparator.Split(f.Featuring, -1)
}

// LiteralForm renders the unparenthesized "<title> - feat. <featuring>" spelling.
func (f FeaturingMatch) LiteralForm() string {
	return fmt.Sprintf("%s - feat. %s", f.Title, f.Featuring)
}

// Rebuilt renders the title with the featuring segment removed and the suffix kept.
func (f FeaturingMatch) Rebuilt() string {
	title := strings.TrimSpace(f.Title)
	if suffix := strings.TrimSpace(f.Suffix); suffix != "" {
		return title + " " + suffix
	}
	return title
}

// LabelMatch is the result of recognizing a version or edition annotation.
//
// Label excludes the surrounding brackets.
type LabelMatch struct {
	Title string
	Label string
}

// Joined renders "<title> <label>".
func (l LabelMatch) Joined() string {
	return fmt.Sprintf("%s %s", l.Title, l.Label)
}

// Dashed renders "<title> - <label>".
func (l LabelMatch) Dashed() string {
	return fmt.Sprintf("%s - %s", l.Title, l.Label)
}

// MatchFeaturing recognizes "<title> [(|-]feat./featuring <names>[) [suffix]]".
func MatchFeaturing(s string) (FeaturingMatch, bool) {
	m := featuringPattern.FindStringSubmatch(s)
	if m == nil {
		return FeaturingMatch{}, false
	}
	return FeaturingMatch{
		Title:     m[featuringPattern.SubexpIndex("title")],
		Featuring: m[featuringPattern.SubexpIndex("featuring")],
		Suffix:    m[featuringPattern.SubexpIndex("suffix")],
	}, true
}

// MatchVersion recognizes "<title> (... version ...)".
func MatchVersion(s string) (LabelMatch, bool) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return LabelMatch{}, false
	}
	return LabelMatch{
		Title: m[versionPattern.SubexpIndex("title")],
		Label: m[versionPattern.SubexpIndex("version")],
	}, true
}

// MatchEdition recognizes "<title> (<edition>)" and "<title> [<edition>]" where the edition is one of a fixed
// vocabulary, optionally followed by "Edition" or "Version", or anything mentioning "Remix".
func MatchEdition(s string) (LabelMatch, bool) {
	m := editionPattern.FindStringSubmatch(s)
	if m == nil {
		return LabelMatch{}, false
	}
	return LabelMatch{
		Title: m[editionPattern.SubexpIndex("title")],
		Label: m[editionPattern.SubexpIndex("edition")],
	}, true
}
