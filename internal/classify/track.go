// file: internal/classify/track.go
// version: 1.2.0
// guid: 4a9b2c3d-6e7f-4a1b-8c2d-5e6f7a8b9c0d

package classify

import (
	"regexp"
	"strconv"
	"strings"
)

// Ordered track-number pattern families. First match wins; later patterns
// are never tried once one succeeds.
var trackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d{1,4})(?:[\s_.-]|$)`), // leading digit run
	regexp.MustCompile(`(?i)track\s*(\d+)`),
	regexp.MustCompile(`(?i)ch(?:apter)?\s*(\d+)`),
	regexp.MustCompile(`(?i)part\s*(\d+)`),
}

// Disc markers matched against a whole path segment (directory name).
var discPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^cd(?:\s*|[-_])?(\d+)$`),
	regexp.MustCompile(`(?i)^disc(?:\s*|[-_])?(\d+)$`),
	regexp.MustCompile(`(?i)^book\s*(\d+)$`),
	regexp.MustCompile(`(?i)^volume\s*(\d+)$`),
	regexp.MustCompile(`(?i)^vol\.?\s*(\d+)$`),
}

// TrackNumber infers a track index for a filename stem. An explicit tagged
// track number always wins over filename parsing. The boolean is false when
// no pattern matched; the caller flags such tracks as missing a number.
func TrackNumber(stem string, tagged *int) (int, bool) {
	if tagged != nil && *tagged > 0 {
		return *tagged, true
	}

	stem = strings.TrimSpace(stem)
	for _, pattern := range trackPatterns {
		m := pattern.FindStringSubmatch(stem)
		if m == nil {
			continue
		}
		// Leading zeros are presentation only; parse the integer value.
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return n, true
	}

	return 0, false
}

// DiscNumber infers a disc number from the ancestor directory segments of a
// file, ordered root-first. An explicit tagged disc number wins. When no
// segment carries a disc marker the disc defaults to 1. The second return
// is true when more than one segment matched a disc-like pattern (e.g.
// nested "Disc 2/CD 1"); the first match nearest the root is authoritative
// and callers should record the ambiguity as a warning.
func DiscNumber(segments []string, tagged *int) (int, bool) {
	if tagged != nil && *tagged > 0 {
		return *tagged, false
	}

	disc := 0
	matches := 0
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		for _, pattern := range discPatterns {
			m := pattern.FindStringSubmatch(seg)
			if m == nil {
				continue
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			matches++
			if disc == 0 {
				disc = n
			}
			break
		}
	}

	if disc == 0 {
		return 1, false
	}
	return disc, matches > 1
}

// IsDiscFolder reports whether a directory name is purely a disc marker
// (CD1, Disc 02, Book 3, ...) and returns the disc number it names.
func IsDiscFolder(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for _, pattern := range discPatterns {
		m := pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	return 0, false
}
