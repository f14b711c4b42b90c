// file: internal/models/models.go
// version: 1.3.0
// guid: 2b7c4d1e-9f3a-4e8b-a650-1d2c3e4f5a6b

package models

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// AudioFormat identifies a supported audio codec/container.
type AudioFormat string

const (
	FormatMP3  AudioFormat = "mp3"
	FormatM4A  AudioFormat = "m4a"
	FormatM4B  AudioFormat = "m4b"
	FormatFLAC AudioFormat = "flac"
	FormatOGG  AudioFormat = "ogg"
	FormatOPUS AudioFormat = "opus"
	FormatAAC  AudioFormat = "aac"
	FormatWAV  AudioFormat = "wav"
)

// SupportedExtensions maps lowercase file extensions (with dot) to formats.
var SupportedExtensions = map[string]AudioFormat{
	".mp3":  FormatMP3,
	".m4a":  FormatM4A,
	".m4b":  FormatM4B,
	".flac": FormatFLAC,
	".ogg":  FormatOGG,
	".opus": FormatOPUS,
	".aac":  FormatAAC,
	".wav":  FormatWAV,
}

// FormatForPath returns the audio format for a file path, if supported.
func FormatForPath(path string) (AudioFormat, bool) {
	f, ok := SupportedExtensions[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// TrackStatus describes the validation state of a track.
type TrackStatus string

const (
	StatusPending            TrackStatus = "pending"
	StatusValid              TrackStatus = "valid"
	StatusMissingNumber      TrackStatus = "missing_number"
	StatusDuplicate          TrackStatus = "duplicate"
	StatusSuspiciousDuration TrackStatus = "suspicious_duration"
	StatusMixedFormat        TrackStatus = "mixed_format"
	StatusError              TrackStatus = "error"
)

// Confidence buckets a match score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"   // >0.85, auto-selectable
	ConfidenceMedium Confidence = "medium" // 0.65-0.85, needs confirmation
	ConfidenceLow    Confidence = "low"    // <0.65, manual pick required
)

// ConfidenceForScore derives the confidence level from a numeric score.
func ConfidenceForScore(score float64) Confidence {
	switch {
	case score > 0.85:
		return ConfidenceHigh
	case score >= 0.65:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// AudioTags is a snapshot of the metadata tags on an audio file.
type AudioTags struct {
	Title       string `yaml:"title,omitempty"`
	Album       string `yaml:"album,omitempty"`
	Artist      string `yaml:"artist,omitempty"`
	AlbumArtist string `yaml:"albumartist,omitempty"`
	Track       *int   `yaml:"track,omitempty"`
	Disc        *int   `yaml:"disc,omitempty"`
	Date        string `yaml:"date,omitempty"`
	Genre       string `yaml:"genre,omitempty"`
	Language    string `yaml:"language,omitempty"`
	Series      string `yaml:"series,omitempty"`
	SeriesIndex string `yaml:"series_index,omitempty"`
	Narrator    string `yaml:"narrator,omitempty"`
	Comment     string `yaml:"comment,omitempty"`
	ISBN        string `yaml:"isbn,omitempty"`
	ASIN        string `yaml:"asin,omitempty"`

	// Raw holds the original tag frames for lossless round-trip.
	Raw map[string]interface{} `yaml:"-"`
}

// Track is one physical audio file belonging to an audiobook set.
type Track struct {
	SrcPath      string      `yaml:"src_path"`
	Disc         int         `yaml:"disc"`
	TrackIndex   int         `yaml:"track_index"`
	Duration     *float64    `yaml:"duration,omitempty"` // seconds
	Bitrate      *int        `yaml:"bitrate,omitempty"`  // kbps
	Channels     *int        `yaml:"channels,omitempty"`
	SampleRate   *int        `yaml:"sample_rate,omitempty"`
	FileSize     int64       `yaml:"file_size"`
	Format       AudioFormat `yaml:"format"`
	ExistingTags AudioTags   `yaml:"existing_tags,omitempty"`
	ProposedName string      `yaml:"proposed_name,omitempty"`
	ProposedTags *AudioTags  `yaml:"proposed_tags,omitempty"`
	Status       TrackStatus `yaml:"status"`
	Warnings     []string    `yaml:"warnings,omitempty"`
}

// Filename returns the base name of the track's source path.
func (t *Track) Filename() string {
	return filepath.Base(t.SrcPath)
}

// Stem returns the filename without its extension.
func (t *Track) Stem() string {
	name := t.Filename()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// AddWarning appends a warning message to the track.
func (t *Track) AddWarning(format string, args ...interface{}) {
	t.Warnings = append(t.Warnings, fmt.Sprintf(format, args...))
}

// ProviderIdentity is a canonical bibliographic record from one external
// source. It is immutable once returned by a provider.
type ProviderIdentity struct {
	Provider    string                 `yaml:"provider"`
	ExternalID  string                 `yaml:"external_id"`
	Title       string                 `yaml:"title"`
	Authors     []string               `yaml:"authors,omitempty"` // first = primary
	SeriesName  string                 `yaml:"series_name,omitempty"`
	SeriesIndex string                 `yaml:"series_index,omitempty"`
	Year        *int                   `yaml:"year,omitempty"`
	Language    string                 `yaml:"language,omitempty"`
	Narrator    string                 `yaml:"narrator,omitempty"`
	Edition     string                 `yaml:"edition,omitempty"`
	Publisher   string                 `yaml:"publisher,omitempty"`
	ISBN10      string                 `yaml:"isbn_10,omitempty"`
	ISBN13      string                 `yaml:"isbn_13,omitempty"`
	ASIN        string                 `yaml:"asin,omitempty"`
	Description string                 `yaml:"description,omitempty"`
	CoverURLs   []string               `yaml:"cover_urls,omitempty"`
	Raw         map[string]interface{} `yaml:"-"`
}

// PrimaryAuthor returns the first listed author, or empty string.
func (id *ProviderIdentity) PrimaryAuthor() string {
	if len(id.Authors) == 0 {
		return ""
	}
	return id.Authors[0]
}

// MatchCandidate pairs a provider identity with its computed confidence.
// The level is always derived from the score, never set independently.
type MatchCandidate struct {
	Identity   ProviderIdentity `yaml:"identity"`
	Confidence float64          `yaml:"confidence"`
	Level      Confidence       `yaml:"level"`
	Reasons    []string         `yaml:"reasons,omitempty"`
}

// NewMatchCandidate builds a candidate, deriving the confidence level.
func NewMatchCandidate(identity ProviderIdentity, confidence float64, reasons []string) MatchCandidate {
	return MatchCandidate{
		Identity:   identity,
		Confidence: confidence,
		Level:      ConfidenceForScore(confidence),
		Reasons:    reasons,
	}
}

// AudiobookSet is one logical audiobook rooted at a source directory.
type AudiobookSet struct {
	SourcePath string `yaml:"source_path"`

	TitleGuess    string `yaml:"title_guess,omitempty"`
	AuthorGuess   string `yaml:"author_guess,omitempty"`
	SeriesGuess   string `yaml:"series_guess,omitempty"`
	VolumeGuess   string `yaml:"volume_guess,omitempty"`
	NarratorGuess string `yaml:"narrator_guess,omitempty"`
	LanguageGuess string `yaml:"language_guess,omitempty"`
	YearGuess     *int   `yaml:"year_guess,omitempty"`

	DiscCount     int      `yaml:"disc_count"`
	TotalTracks   int      `yaml:"total_tracks"`
	TotalDuration *float64 `yaml:"total_duration,omitempty"`

	Tracks         []*Track          `yaml:"tracks"`
	Candidates     []MatchCandidate  `yaml:"candidates,omitempty"`
	ChosenIdentity *ProviderIdentity `yaml:"chosen_identity,omitempty"`

	Warnings []string `yaml:"warnings,omitempty"`
}

// MultiDisc reports whether the set spans more than one disc.
func (s *AudiobookSet) MultiDisc() bool {
	return s.DiscCount > 1
}

// TracksForDisc returns the tracks of one disc sorted by track index.
func (s *AudiobookSet) TracksForDisc(disc int) []*Track {
	var out []*Track
	for _, t := range s.Tracks {
		if t.Disc == disc {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TrackIndex < out[j].TrackIndex
	})
	return out
}

// MaxTrackIndex returns the highest track index across all discs, or 0.
func (s *AudiobookSet) MaxTrackIndex() int {
	max := 0
	for _, t := range s.Tracks {
		if t.TrackIndex > max {
			max = t.TrackIndex
		}
	}
	return max
}

// AddWarning appends a warning message to the set.
func (s *AudiobookSet) AddWarning(format string, args ...interface{}) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// ValidateTrackOrder checks per-disc track numbering and returns the issues
// found. Issues are advisory; they never make a set unprocessable.
func (s *AudiobookSet) ValidateTrackOrder() []string {
	var issues []string

	for disc := 1; disc <= s.DiscCount; disc++ {
		discTracks := s.TracksForDisc(disc)
		if len(discTracks) == 0 {
			issues = append(issues, fmt.Sprintf("Disc %d has no tracks", disc))
			continue
		}

		numbers := make([]int, 0, len(discTracks))
		for _, t := range discTracks {
			numbers = append(numbers, t.TrackIndex)
		}
		sort.Ints(numbers)

		contiguous := true
		for i, n := range numbers {
			if n != i+1 {
				contiguous = false
				break
			}
		}
		if !contiguous {
			issues = append(issues, fmt.Sprintf("Disc %d has gaps in track numbering: %v", disc, numbers))
		}

		seen := make(map[int]int)
		for _, n := range numbers {
			seen[n]++
		}
		var dups []int
		for _, n := range numbers {
			if seen[n] > 1 {
				dups = append(dups, n)
				seen[n] = 0 // report each duplicate value once
			}
		}
		if len(dups) > 0 {
			sort.Ints(dups)
			issues = append(issues, fmt.Sprintf("Disc %d has duplicate track numbers: %v", disc, dups))
		}
	}

	return issues
}
