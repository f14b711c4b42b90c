// file: internal/probe/probe.go
// version: 1.2.0
// guid: 3c8d9e0f-1a2b-4c3d-8e4f-5a6b7c8d9e0f

// Package probe reads tag metadata and audio properties from audio files.
// Tag reading uses a pure-Go parser and always works; duration/bitrate
// probing needs the taglib build tag and degrades to nil fields without it.
package probe

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"github.com/jdfalk/audiobook-renamer/internal/models"
)

// Prober reads a metadata snapshot for one file.
type Prober struct{}

func New() *Prober {
	return &Prober{}
}

// File probes one audio file and returns a track populated with tags, audio
// properties, and file size. Unreadable tags are not fatal; the returned
// track carries a warning instead.
func (p *Prober) File(path string) (*models.Track, error) {
	format, ok := models.FormatForPath(path)
	if !ok {
		return nil, fmt.Errorf("unsupported audio format: %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	track := &models.Track{
		SrcPath:  path,
		Format:   format,
		FileSize: info.Size(),
		Status:   models.StatusPending,
	}

	tags, err := readTags(path)
	if err != nil {
		track.AddWarning("unreadable tags: %v", err)
	} else {
		track.ExistingTags = tags
	}

	if props, err := readProperties(path); err == nil {
		track.Duration = props.Duration
		track.Bitrate = props.Bitrate
		track.Channels = props.Channels
		track.SampleRate = props.SampleRate
	}

	return track, nil
}

// readTags parses the file's tag frames into an AudioTags snapshot. Raw
// frames are preserved so later retag operations can round-trip unknown
// fields.
func readTags(path string) (models.AudioTags, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.AudioTags{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return models.AudioTags{}, err
	}

	tags := models.AudioTags{
		Title:       m.Title(),
		Album:       m.Album(),
		Artist:      m.Artist(),
		AlbumArtist: m.AlbumArtist(),
		Genre:       m.Genre(),
		Comment:     m.Comment(),
		Raw:         m.Raw(),
	}

	if year := m.Year(); year > 0 {
		tags.Date = strconv.Itoa(year)
	}

	// Track/disc frames like "3/12" are already split by the parser.
	if n, _ := m.Track(); n > 0 {
		track := n
		tags.Track = &track
	}
	if n, _ := m.Disc(); n > 0 {
		disc := n
		tags.Disc = &disc
	}

	// Audiobook rips commonly store the narrator in the composer frame.
	if composer := m.Composer(); composer != "" {
		tags.Narrator = composer
	}

	applyRawFrames(&tags, m.Raw())

	return tags, nil
}

// applyRawFrames picks audiobook-specific fields out of raw tag frames.
// Keys vary by container; the common iTunes/vorbis spellings are checked.
func applyRawFrames(tags *models.AudioTags, raw map[string]interface{}) {
	get := func(keys ...string) string {
		for _, key := range keys {
			for rawKey, val := range raw {
				if !strings.EqualFold(rawKey, key) {
					continue
				}
				if s, ok := val.(string); ok && s != "" {
					return s
				}
			}
		}
		return ""
	}

	if tags.Series == "" {
		tags.Series = get("MVNM", "SERIES", "----:com.apple.iTunes:SERIES")
	}
	if tags.SeriesIndex == "" {
		tags.SeriesIndex = get("MVIN", "SERIES-PART", "----:com.apple.iTunes:SERIES-PART")
	}
	if tags.Narrator == "" {
		tags.Narrator = get("NARRATOR", "----:com.apple.iTunes:NARRATOR")
	}
	if tags.Language == "" {
		tags.Language = get("TLAN", "LANGUAGE")
	}
	if tags.ISBN == "" {
		tags.ISBN = get("ISBN", "----:com.apple.iTunes:ISBN")
	}
	if tags.ASIN == "" {
		tags.ASIN = get("ASIN", "CDEK", "----:com.apple.iTunes:ASIN")
	}
}

// Properties holds technical audio stream attributes.
type Properties struct {
	Duration   *float64 // seconds
	Bitrate    *int     // kbps
	Channels   *int
	SampleRate *int
}
