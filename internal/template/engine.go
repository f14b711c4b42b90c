// file: internal/template/engine.go
// version: 1.4.0
// guid: 6f7a8b9c-0d1e-4f2a-b3c4-d5e6f7a8b9c0

// Package template renders filenames and folder names from token templates
// and applies filesystem-safety normalization. All operations are pure
// computations over in-memory data.
package template

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jdfalk/audiobook-renamer/internal/models"
)

// CasePolicy controls how resolved token values are cased.
type CasePolicy string

const (
	TitleCase CasePolicy = "title_case"
	LowerCase CasePolicy = "lower_case"
	UpperCase CasePolicy = "upper_case"
	AsIs      CasePolicy = "as_is"
)

// forbiddenChars are replaced with '_' in any rendered path component.
const forbiddenChars = `<>:"/\|?*`

// templateForbidden is the subset rejected inside template strings.
// '/' is excluded: folder templates legitimately use it as the segment
// separator ("{AuthorLastFirst}/{Title}").
const templateForbidden = `<>:"|?*\`

// validTokens is the closed token set. Unknown tokens are validation errors.
var validTokens = map[string]bool{
	"Author": true, "AuthorLastFirst": true, "Title": true, "ShortTitle": true,
	"SeriesName": true, "SeriesIndex": true, "Year": true, "Narrator": true,
	"DiscPad": true, "TrackPad": true, "Disc": true, "Track": true,
	"TrackTitle": true, "Language": true, "ISBN": true,
}

// Words kept lowercase by smart title case unless they lead the string.
var minorWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "but": true,
	"by": true, "for": true, "if": true, "in": true, "nor": true, "on": true,
	"or": true, "so": true, "the": true, "to": true, "up": true, "yet": true,
}

var (
	reToken         = regexp.MustCompile(`\{([^}]+)\}`)
	reWhitespaceRun = regexp.MustCompile(`\s+`)
	// Degenerate joiner runs produced by empty tokens: "- -", "--", "_-".
	reJoinerRun = regexp.MustCompile(`[-_](?:\s*[-_])+`)
	// Empty bracket pairs left behind by empty tokens: "()", "[ ]".
	reEmptyGroup = regexp.MustCompile(`\(\s*\)|\[\s*\]`)
)

// Engine renders templates under one normalization configuration.
type Engine struct {
	CasePolicy       CasePolicy
	UnicodeNormalize bool
	MaxPathLength    int
	MaxComponent     int
	ShortTitleLength int
}

// NewEngine returns an engine with the default normalization settings.
func NewEngine(policy CasePolicy) *Engine {
	return &Engine{
		CasePolicy:       policy,
		UnicodeNormalize: true,
		MaxPathLength:    255,
		MaxComponent:     100,
		ShortTitleLength: 30,
	}
}

// GenerateFolderName renders a folder path (possibly multi-segment) for an
// audiobook set.
func (e *Engine) GenerateFolderName(set *models.AudiobookSet, identity *models.ProviderIdentity, template string) string {
	tokens := e.buildTokens(set, identity, nil, 0)
	rendered := e.applyTemplate(template, tokens)
	return e.NormalizePath(rendered)
}

// GenerateFilename renders a filename for one track, preserving the track's
// source extension.
func (e *Engine) GenerateFilename(track *models.Track, set *models.AudiobookSet, identity *models.ProviderIdentity, template string, zeroPadWidth int) string {
	tokens := e.buildTokens(set, identity, track, zeroPadWidth)
	rendered := e.applyTemplate(template, tokens)

	ext := filepath.Ext(track.SrcPath)
	if !strings.HasSuffix(rendered, ext) {
		rendered += ext
	}
	return e.NormalizeFilename(rendered)
}

// ValidateTemplate checks a template string and returns all violations
// found, not just the first. Rendering is only attempted on templates that
// validate cleanly.
func ValidateTemplate(template string) (bool, []string) {
	var errs []string

	if strings.ContainsAny(template, templateForbidden) {
		errs = append(errs, "Template contains forbidden characters")
	}

	if strings.Count(template, "{") != strings.Count(template, "}") {
		errs = append(errs, "Template has unmatched braces")
	}

	for _, m := range reToken.FindAllStringSubmatch(template, -1) {
		if !validTokens[m[1]] {
			errs = append(errs, fmt.Sprintf("Unknown token: {%s}", m[1]))
		}
	}

	return len(errs) == 0, errs
}

// buildTokens resolves the token table. Canonical identity fields win over
// the set's heuristic guesses; missing values fall back to fixed strings or
// empty.
func (e *Engine) buildTokens(set *models.AudiobookSet, identity *models.ProviderIdentity, track *models.Track, zeroPadWidth int) map[string]string {
	var title, author, seriesName, seriesIndex, year, narrator, language, isbn string

	if identity != nil {
		title = firstNonEmpty(identity.Title, set.TitleGuess)
		author = firstNonEmpty(identity.PrimaryAuthor(), set.AuthorGuess)
		seriesName = firstNonEmpty(identity.SeriesName, set.SeriesGuess)
		seriesIndex = firstNonEmpty(identity.SeriesIndex, set.VolumeGuess)
		if identity.Year != nil {
			year = strconv.Itoa(*identity.Year)
		}
		narrator = firstNonEmpty(identity.Narrator, set.NarratorGuess)
		language = firstNonEmpty(identity.Language, set.LanguageGuess)
		isbn = firstNonEmpty(identity.ISBN13, identity.ISBN10)
	} else {
		title = set.TitleGuess
		author = set.AuthorGuess
		seriesName = set.SeriesGuess
		seriesIndex = set.VolumeGuess
		narrator = set.NarratorGuess
		language = set.LanguageGuess
	}

	if title == "" {
		title = "Unknown Title"
	}

	tokens := map[string]string{
		"Title":       title,
		"ShortTitle":  e.shortenTitle(title),
		"Year":        year,
		"Language":    language,
		"Narrator":    narrator,
		"ISBN":        isbn,
		"SeriesName":  seriesName,
		"SeriesIndex": seriesIndex,
	}

	if author != "" {
		tokens["Author"] = author
		tokens["AuthorLastFirst"] = authorLastFirst(author)
	} else {
		tokens["Author"] = "Unknown Author"
		tokens["AuthorLastFirst"] = "Unknown Author"
	}

	tokens["Track"] = ""
	tokens["TrackPad"] = ""
	tokens["Disc"] = ""
	tokens["DiscPad"] = ""
	tokens["TrackTitle"] = ""

	if track != nil {
		trackWidth := zeroPadWidth
		if trackWidth == 0 {
			trackWidth = len(strconv.Itoa(set.MaxTrackIndex()))
		}
		tokens["Track"] = strconv.Itoa(track.TrackIndex)
		tokens["TrackPad"] = zeroPad(track.TrackIndex, trackWidth)

		// Disc tokens are always empty for single-disc sets; no disc
		// segment is ever emitted when disc_count <= 1. Disc padding is
		// derived from the disc count's digits even when an explicit
		// track width is given.
		if set.DiscCount > 1 {
			discWidth := len(strconv.Itoa(set.DiscCount))
			tokens["Disc"] = strconv.Itoa(track.Disc)
			tokens["DiscPad"] = zeroPad(track.Disc, discWidth)
		}

		if track.ExistingTags.Title != "" {
			tokens["TrackTitle"] = track.ExistingTags.Title
		} else {
			tokens["TrackTitle"] = fmt.Sprintf("Track %d", track.TrackIndex)
		}
	}

	for key, value := range tokens {
		if value != "" {
			tokens[key] = e.applyCasePolicy(value)
		}
	}

	return tokens
}

// applyTemplate substitutes token placeholders and cleans up separator
// debris left behind by empty tokens. Cleanup runs per path segment, and
// segments that end up empty are dropped entirely.
func (e *Engine) applyTemplate(template string, tokens map[string]string) string {
	result := reToken.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		return tokens[name]
	})

	segments := strings.Split(result, "/")
	cleaned := segments[:0]
	for _, seg := range segments {
		// Collapse degenerate joiner runs from empty tokens, then whitespace.
		seg = reEmptyGroup.ReplaceAllString(seg, "")
		seg = reJoinerRun.ReplaceAllString(seg, "-")
		seg = reWhitespaceRun.ReplaceAllString(seg, " ")
		seg = strings.Trim(seg, " -_")
		if seg != "" {
			cleaned = append(cleaned, seg)
		}
	}
	return strings.Join(cleaned, "/")
}

// applyCasePolicy applies the engine's case policy to one token value.
func (e *Engine) applyCasePolicy(text string) string {
	switch e.CasePolicy {
	case TitleCase:
		return smartTitleCase(text)
	case LowerCase:
		return strings.ToLower(text)
	case UpperCase:
		return strings.ToUpper(text)
	default:
		return text
	}
}

// smartTitleCase capitalizes every word except minor words; the first word
// is always capitalized regardless of minor-word status.
func smartTitleCase(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	out := make([]string, len(words))
	for i, word := range words {
		lower := strings.ToLower(word)
		if i > 0 && minorWords[lower] {
			out[i] = lower
		} else {
			out[i] = capitalize(lower)
		}
	}
	return strings.Join(out, " ")
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	r := []rune(word)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// authorLastFirst renders "First Middle Last" as "Last, First Middle".
// Single-word names pass through unchanged.
func authorLastFirst(author string) string {
	parts := strings.Fields(strings.TrimSpace(author))
	if len(parts) <= 1 {
		return author
	}
	surname := parts[len(parts)-1]
	given := strings.Join(parts[:len(parts)-1], " ")
	return fmt.Sprintf("%s, %s", surname, given)
}

// shortenTitle truncates at a word boundary to at most ShortTitleLength,
// falling back to a hard cut when no word boundary fits.
func (e *Engine) shortenTitle(title string) string {
	limit := e.ShortTitleLength
	if limit <= 0 {
		limit = 30
	}
	if len(title) <= limit {
		return title
	}

	words := strings.Fields(title)
	result := ""
	for _, word := range words {
		candidate := word
		if result != "" {
			candidate = result + " " + word
		}
		if len(candidate) > limit {
			break
		}
		result = candidate
	}
	if result == "" {
		return title[:limit]
	}
	return result
}

// NormalizePath normalizes a multi-segment path: each '/'-separated
// component gets filename normalization, overlong components are truncated,
// and the overall length is capped.
func (e *Engine) NormalizePath(path string) string {
	if e.UnicodeNormalize {
		path = norm.NFC.String(path)
	}

	parts := strings.Split(path, "/")
	for i, part := range parts {
		part = replaceForbidden(strings.TrimSpace(part))
		if e.MaxComponent > 0 && len(part) > e.MaxComponent {
			part = truncateAtWord(part, e.MaxComponent)
		}
		parts[i] = part
	}
	result := strings.Join(parts, "/")

	if e.MaxPathLength > 0 && len(result) > e.MaxPathLength {
		result = truncateAtWord(result, e.MaxPathLength)
	}
	return result
}

// NormalizeFilename normalizes a single filename, preserving its extension
// when the length budget forces stem truncation.
func (e *Engine) NormalizeFilename(filename string) string {
	if e.UnicodeNormalize {
		filename = norm.NFC.String(filename)
	}

	filename = replaceForbidden(filename)

	const maxFilename = 255
	if len(filename) > maxFilename {
		ext := filepath.Ext(filename)
		stem := strings.TrimSuffix(filename, ext)
		stem = truncateAtWord(stem, maxFilename-len(ext))
		filename = stem + ext
	}

	return strings.TrimSpace(filename)
}

func replaceForbidden(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(forbiddenChars, r) {
			b.WriteRune('_')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// truncateAtWord shortens text to maxLength, preferring word boundaries and
// marking the cut with an ellipsis.
func truncateAtWord(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}

	if strings.Contains(text, " ") {
		words := strings.Fields(text)
		result := ""
		for _, word := range words {
			candidate := word
			if result != "" {
				candidate = result + " " + word
			}
			if len(candidate) > maxLength-3 {
				break
			}
			result = candidate
		}
		if result != "" {
			return result + "..."
		}
	}

	return text[:maxLength-3] + "..."
}

func zeroPad(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
