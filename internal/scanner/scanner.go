// file: internal/scanner/scanner.go
// version: 2.1.0
// guid: 3c4d5e6f-7a8b-9c0d-1e2f-3a4b5c6d7e8f

// Package scanner discovers audiobook sets on disk. A set is one logical
// audiobook: a directory of audio files, optionally split across disc
// subfolders (CD1, Disc 02, ...), which are folded into the parent set.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/schollz/progressbar/v3"

	"github.com/jdfalk/audiobook-renamer/internal/classify"
	"github.com/jdfalk/audiobook-renamer/internal/models"
	"github.com/jdfalk/audiobook-renamer/internal/probe"
)

// Scanner walks a source tree and assembles audiobook sets.
type Scanner struct {
	Workers   int
	MaxDepth  int  // 0 = unlimited
	Recursive bool // false limits the walk to the root and its disc folders
	Progress  bool

	prober *probe.Prober
}

// New returns a scanner with the given worker count.
func New(workers int) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		Workers:   workers,
		Recursive: true,
		prober:    probe.New(),
	}
}

var reFolderYear = regexp.MustCompile(`\(((?:19|20)\d{2})\)`)

// Scan discovers all audiobook sets under root. Directories without audio
// files yield no set. Unreadable files become track warnings rather than
// aborting the scan.
func (s *Scanner) Scan(ctx context.Context, root string) ([]*models.AudiobookSet, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	files, err := s.collectAudioFiles(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	groups := groupBySetRoot(root, files)

	var bar *progressbar.ProgressBar
	if s.Progress {
		bar = progressbar.Default(int64(len(files)), "Probing files")
	}

	sets := make([]*models.AudiobookSet, 0, len(groups))
	for _, setRoot := range sortedKeys(groups) {
		set, err := s.buildSet(ctx, setRoot, groups[setRoot], bar)
		if err != nil {
			return sets, err
		}
		if set != nil {
			sets = append(sets, set)
		}
	}

	sort.SliceStable(sets, func(i, j int) bool {
		return sets[i].SourcePath < sets[j].SourcePath
	})
	return sets, nil
}

// collectAudioFiles walks the tree and returns every supported audio file,
// honoring MaxDepth relative to root.
func (s *Scanner) collectAudioFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree; skip rather than abort.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			if s.MaxDepth > 0 && pathDepth(root, path) > s.MaxDepth {
				return filepath.SkipDir
			}
			// Non-recursive scans still descend into disc folders so a
			// multi-disc book directly under root stays one set.
			if !s.Recursive && path != root {
				if _, ok := classify.IsDiscFolder(d.Name()); !ok {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if _, ok := models.FormatForPath(path); ok {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func pathDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

// groupBySetRoot assigns each file to its set root directory. Disc-marker
// folders (CD1, Disc 02) never form their own set; the file belongs to the
// nearest non-disc ancestor. Files directly in the scan root group by the
// root itself.
func groupBySetRoot(root string, files []string) map[string][]string {
	groups := make(map[string][]string)
	for _, file := range files {
		dir := filepath.Dir(file)
		for dir != root {
			if _, ok := classify.IsDiscFolder(filepath.Base(dir)); !ok {
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
		groups[dir] = append(groups[dir], file)
	}
	return groups
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildSet probes one group of files and assembles the audiobook set with
// guesses, numbering, and validation warnings.
func (s *Scanner) buildSet(ctx context.Context, setRoot string, files []string, bar *progressbar.ProgressBar) (*models.AudiobookSet, error) {
	tracks := make([]*models.Track, len(files))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, s.Workers)
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			track, err := s.prober.File(path)
			if err != nil {
				track = &models.Track{
					SrcPath: path,
					Status:  models.StatusError,
				}
				track.AddWarning("probe failed: %v", err)
			}
			tracks[idx] = track
			if bar != nil {
				_ = bar.Add(1)
			}
		}(i, file)
	}
	wg.Wait()

	set := &models.AudiobookSet{
		SourcePath: setRoot,
	}

	for _, track := range tracks {
		s.numberTrack(setRoot, track)
		set.Tracks = append(set.Tracks, track)
	}

	sort.SliceStable(set.Tracks, func(i, j int) bool {
		a, b := set.Tracks[i], set.Tracks[j]
		if a.Disc != b.Disc {
			return a.Disc < b.Disc
		}
		if a.TrackIndex != b.TrackIndex {
			return a.TrackIndex < b.TrackIndex
		}
		return a.SrcPath < b.SrcPath
	})

	maxDisc := 1
	var totalDuration float64
	haveDuration := false
	for _, track := range set.Tracks {
		if track.Disc > maxDisc {
			maxDisc = track.Disc
		}
		if track.Duration != nil {
			totalDuration += *track.Duration
			haveDuration = true
		}
	}
	set.DiscCount = maxDisc
	set.TotalTracks = len(set.Tracks)
	if haveDuration {
		set.TotalDuration = &totalDuration
	}

	s.applyGuesses(set)
	s.flagIssues(set)

	return set, nil
}

// numberTrack infers disc and track numbers for one probed track. Tag data
// wins over filename patterns; a track with no inferable number is flagged,
// never silently defaulted.
func (s *Scanner) numberTrack(setRoot string, track *models.Track) {
	if track.Status == models.StatusError {
		return
	}

	segments := discSegments(setRoot, track.SrcPath)
	disc, ambiguous := classify.DiscNumber(segments, track.ExistingTags.Disc)
	track.Disc = disc
	if ambiguous {
		track.AddWarning("ambiguous disc markers in path %s; using %d", filepath.Dir(track.SrcPath), disc)
	}

	n, ok := classify.TrackNumber(track.Stem(), track.ExistingTags.Track)
	if !ok {
		track.Status = models.StatusMissingNumber
		track.AddWarning("no track number in tags or filename: %s", track.Filename())
		return
	}
	track.TrackIndex = n
}

// discSegments returns the directory segments between the set root and the
// file, ordered root-first.
func discSegments(setRoot, file string) []string {
	rel, err := filepath.Rel(setRoot, filepath.Dir(file))
	if err != nil || rel == "." {
		return nil
	}
	return strings.Split(rel, string(filepath.Separator))
}

// applyGuesses fills the set's metadata guesses from the folder name and
// cross-checks them against the tags of the first few tracks. A consistent
// album tag overrides a folder-derived title unless the two already agree.
func (s *Scanner) applyGuesses(set *models.AudiobookSet) {
	folder := filepath.Base(set.SourcePath)
	guesses := classify.ParseFolderName(folder)
	set.TitleGuess = guesses.Title
	set.AuthorGuess = guesses.Author
	set.SeriesGuess = guesses.Series
	set.VolumeGuess = guesses.Volume

	if m := reFolderYear.FindStringSubmatch(folder); m != nil {
		if year, err := strconv.Atoi(m[1]); err == nil {
			set.YearGuess = &year
		}
	}

	sample := set.Tracks
	if len(sample) > 5 {
		sample = sample[:5]
	}

	if album := consistentTag(sample, func(t *models.AudioTags) string { return t.Album }); album != "" {
		if set.TitleGuess == "" || !fuzzy.MatchNormalizedFold(set.TitleGuess, album) {
			set.TitleGuess = album
		}
	}
	if artist := consistentTag(sample, func(t *models.AudioTags) string {
		if t.AlbumArtist != "" {
			return t.AlbumArtist
		}
		return t.Artist
	}); artist != "" {
		if set.AuthorGuess == "" || !fuzzy.MatchNormalizedFold(set.AuthorGuess, artist) {
			set.AuthorGuess = artist
		}
	}
	if series := consistentTag(sample, func(t *models.AudioTags) string { return t.Series }); series != "" {
		set.SeriesGuess = series
	}
	if idx := consistentTag(sample, func(t *models.AudioTags) string { return t.SeriesIndex }); idx != "" {
		set.VolumeGuess = idx
	}
	if narrator := consistentTag(sample, func(t *models.AudioTags) string { return t.Narrator }); narrator != "" {
		set.NarratorGuess = narrator
	}
	if lang := consistentTag(sample, func(t *models.AudioTags) string { return t.Language }); lang != "" {
		set.LanguageGuess = lang
	}
	if set.YearGuess == nil {
		if date := consistentTag(sample, func(t *models.AudioTags) string { return t.Date }); len(date) >= 4 {
			if year, err := strconv.Atoi(date[:4]); err == nil && year > 0 {
				set.YearGuess = &year
			}
		}
	}
}

// consistentTag returns a tag value when every sampled track that has the
// tag agrees on it; mixed values return empty.
func consistentTag(tracks []*models.Track, get func(*models.AudioTags) string) string {
	value := ""
	for _, track := range tracks {
		v := strings.TrimSpace(get(&track.ExistingTags))
		if v == "" {
			continue
		}
		if value == "" {
			value = v
			continue
		}
		if !strings.EqualFold(value, v) {
			return ""
		}
	}
	return value
}

// flagIssues runs track-order validation and per-track status checks on a
// fully assembled set.
func (s *Scanner) flagIssues(set *models.AudiobookSet) {
	for _, issue := range set.ValidateTrackOrder() {
		set.AddWarning("%s", issue)
	}

	// Mark tracks that share a (disc, index) pair with another track.
	seen := make(map[[2]int]int)
	for _, track := range set.Tracks {
		if track.TrackIndex > 0 {
			seen[[2]int{track.Disc, track.TrackIndex}]++
		}
	}
	formats := make(map[models.AudioFormat]int)
	for _, track := range set.Tracks {
		if track.Format != "" {
			formats[track.Format]++
		}
	}
	dominant := dominantFormat(formats)

	for _, track := range set.Tracks {
		if track.Status != models.StatusPending {
			continue
		}
		switch {
		case seen[[2]int{track.Disc, track.TrackIndex}] > 1:
			track.Status = models.StatusDuplicate
		case len(formats) > 1 && track.Format != dominant:
			track.Status = models.StatusMixedFormat
			track.AddWarning("format %s differs from the set's dominant %s", track.Format, dominant)
		case track.Duration != nil && *track.Duration < 5:
			track.Status = models.StatusSuspiciousDuration
			track.AddWarning("suspiciously short duration: %.1fs", *track.Duration)
		default:
			track.Status = models.StatusValid
		}
	}

	if len(formats) > 1 {
		names := make([]string, 0, len(formats))
		for f := range formats {
			names = append(names, string(f))
		}
		sort.Strings(names)
		set.AddWarning("mixed audio formats: %s", strings.Join(names, ", "))
	}
}

// dominantFormat picks the most common format, ties broken alphabetically
// for determinism.
func dominantFormat(formats map[models.AudioFormat]int) models.AudioFormat {
	var best models.AudioFormat
	bestN := -1
	keys := make([]string, 0, len(formats))
	for f := range formats {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)
	for _, k := range keys {
		if formats[models.AudioFormat(k)] > bestN {
			best = models.AudioFormat(k)
			bestN = formats[best]
		}
	}
	return best
}
