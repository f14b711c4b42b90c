// file: internal/classify/folder.go
// version: 1.1.0
// guid: 9c0d1e2f-3a4b-4c5d-8e7f-6a5b4c3d2e1f

package classify

import (
	"regexp"
	"strings"
)

// Guesses holds best-effort metadata extracted from a folder name.
// Any field may be empty; heuristic ambiguity is not an error.
type Guesses struct {
	Title  string
	Author string
	Series string
	Volume string
}

var (
	// Bracketed/parenthesised noise stripped before pattern matching:
	// "[Unabridged]", "(2010)", "[64kbps]".
	reBracketNoise = regexp.MustCompile(`\s*\[[^\]]*\]\s*`)
	reParenNoise   = regexp.MustCompile(`\s*\([^)]*\)\s*`)

	// "Author - Title" with a single spaced-dash separator. En/em dashes
	// show up in scene releases, so all three are accepted.
	reAuthorTitle = regexp.MustCompile(`^(.+?)\s+[-–—]\s+(.+)$`)

	// "<Series> Book <N>" / "<Series> Vol 3" / "<Series> Volume 12".
	reSeriesVolume = regexp.MustCompile(`(?i)^(.+?)\s+(?:book|vol\.?|volume)\s*(\d+)\s*$`)
)

// ParseFolderName extracts title/author/series/volume guesses from a
// directory name. Pattern families are tried in priority order with
// early exit on first match; the raw folder name is the title fallback.
func ParseFolderName(name string) Guesses {
	cleaned := reBracketNoise.ReplaceAllString(name, " ")
	cleaned = reParenNoise.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		cleaned = strings.TrimSpace(name)
	}

	// "Author - Title": only when exactly one separator is present,
	// otherwise the split is too ambiguous to trust.
	if m := reAuthorTitle.FindStringSubmatch(cleaned); m != nil && countSpacedDashes(cleaned) == 1 {
		return Guesses{
			Author: strings.TrimSpace(m[1]),
			Title:  strings.TrimSpace(m[2]),
		}
	}

	if m := reSeriesVolume.FindStringSubmatch(cleaned); m != nil {
		return Guesses{
			Title:  cleaned,
			Series: strings.TrimSpace(m[1]),
			Volume: m[2],
		}
	}

	return Guesses{Title: cleaned}
}

// countSpacedDashes counts " - " style separators (ASCII and typographic).
func countSpacedDashes(s string) int {
	n := 0
	for _, sep := range []string{" - ", " – ", " — "} {
		n += strings.Count(s, sep)
	}
	return n
}
