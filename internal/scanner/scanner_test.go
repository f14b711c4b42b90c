// file: internal/scanner/scanner_test.go
// version: 1.2.0
// guid: 6d7e8f9a-0b1c-4d2e-3f4a-5b6c7d8e9f0a

package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jdfalk/audiobook-renamer/internal/models"
)

// writeAudioFiles creates empty placeholder audio files under dir.
func writeAudioFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func scanOne(t *testing.T, root string) []*models.AudiobookSet {
	t.Helper()
	sets, err := New(2).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return sets
}

func TestScanSingleFolder(t *testing.T) {
	root := t.TempDir()
	book := filepath.Join(root, "Brandon Sanderson - The Way of Kings")
	writeAudioFiles(t, book, "01 - Prologue.mp3", "02 - Chapter One.mp3", "03 - Chapter Two.mp3")

	sets := scanOne(t, root)
	if len(sets) != 1 {
		t.Fatalf("got %d sets, want 1", len(sets))
	}

	set := sets[0]
	if set.SourcePath != book {
		t.Errorf("source = %q, want %q", set.SourcePath, book)
	}
	if set.AuthorGuess != "Brandon Sanderson" {
		t.Errorf("author guess = %q", set.AuthorGuess)
	}
	if set.TitleGuess != "The Way of Kings" {
		t.Errorf("title guess = %q", set.TitleGuess)
	}
	if set.TotalTracks != 3 || set.DiscCount != 1 {
		t.Errorf("tracks/discs = %d/%d, want 3/1", set.TotalTracks, set.DiscCount)
	}
	for i, track := range set.Tracks {
		if track.TrackIndex != i+1 {
			t.Errorf("track %d index = %d", i, track.TrackIndex)
		}
		if track.Disc != 1 {
			t.Errorf("track %d disc = %d", i, track.Disc)
		}
	}
}

func TestScanDiscSubfoldersFoldIntoParent(t *testing.T) {
	root := t.TempDir()
	book := filepath.Join(root, "Long Book")
	writeAudioFiles(t, filepath.Join(book, "CD1"), "01.mp3", "02.mp3")
	writeAudioFiles(t, filepath.Join(book, "CD2"), "01.mp3", "02.mp3")

	sets := scanOne(t, root)
	if len(sets) != 1 {
		t.Fatalf("disc folders must not form their own sets: got %d", len(sets))
	}

	set := sets[0]
	if set.SourcePath != book {
		t.Errorf("source = %q, want %q", set.SourcePath, book)
	}
	if set.DiscCount != 2 {
		t.Errorf("disc count = %d, want 2", set.DiscCount)
	}
	if n := len(set.TracksForDisc(2)); n != 2 {
		t.Errorf("disc 2 has %d tracks, want 2", n)
	}
}

func TestScanMissingTrackNumberFlagged(t *testing.T) {
	root := t.TempDir()
	book := filepath.Join(root, "Some Book")
	writeAudioFiles(t, book, "01 Intro.mp3", "Epilogue.mp3")

	sets := scanOne(t, root)
	if len(sets) != 1 {
		t.Fatalf("got %d sets", len(sets))
	}

	var flagged *models.Track
	for _, track := range sets[0].Tracks {
		if track.Filename() == "Epilogue.mp3" {
			flagged = track
		}
	}
	if flagged == nil {
		t.Fatal("Epilogue.mp3 not scanned")
	}
	if flagged.Status != models.StatusMissingNumber {
		t.Errorf("status = %s, want %s", flagged.Status, models.StatusMissingNumber)
	}
	if len(flagged.Warnings) == 0 {
		t.Error("missing-number track has no warning")
	}
}

func TestScanDuplicateNumbersFlagged(t *testing.T) {
	root := t.TempDir()
	book := filepath.Join(root, "Dup Book")
	writeAudioFiles(t, book, "01 a.mp3", "01 b.mp3", "02 c.mp3")

	sets := scanOne(t, root)
	set := sets[0]

	var dups int
	for _, track := range set.Tracks {
		if track.Status == models.StatusDuplicate {
			dups++
		}
	}
	if dups != 2 {
		t.Errorf("got %d duplicate-flagged tracks, want 2", dups)
	}

	found := false
	for _, w := range set.Warnings {
		if strings.Contains(w, "duplicate track numbers") {
			found = true
		}
	}
	if !found {
		t.Errorf("set warnings missing duplicate report: %v", set.Warnings)
	}
}

func TestScanMixedFormatsFlagged(t *testing.T) {
	root := t.TempDir()
	book := filepath.Join(root, "Mixed Book")
	writeAudioFiles(t, book, "01.mp3", "02.mp3", "03.flac")

	sets := scanOne(t, root)
	set := sets[0]

	found := false
	for _, w := range set.Warnings {
		if strings.Contains(w, "mixed audio formats") {
			found = true
		}
	}
	if !found {
		t.Errorf("set warnings missing mixed formats: %v", set.Warnings)
	}

	for _, track := range set.Tracks {
		if track.Format == models.FormatFLAC && track.Status != models.StatusMixedFormat {
			t.Errorf("minority format track status = %s", track.Status)
		}
	}
}

func TestScanIgnoresNonAudioAndEmptyDirs(t *testing.T) {
	root := t.TempDir()
	book := filepath.Join(root, "Real Book")
	writeAudioFiles(t, book, "01.mp3")
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	sets := scanOne(t, root)
	if len(sets) != 1 {
		t.Fatalf("got %d sets, want 1 (empty dirs and non-audio ignored)", len(sets))
	}
}

func TestScanEmptyTreeReturnsNoSets(t *testing.T) {
	sets := scanOne(t, t.TempDir())
	if len(sets) != 0 {
		t.Errorf("got %d sets from empty tree", len(sets))
	}
}

func TestScanSetsSortedBySourcePath(t *testing.T) {
	root := t.TempDir()
	writeAudioFiles(t, filepath.Join(root, "B Book"), "01.mp3")
	writeAudioFiles(t, filepath.Join(root, "A Book"), "01.mp3")
	writeAudioFiles(t, filepath.Join(root, "C Book"), "01.mp3")

	sets := scanOne(t, root)
	if len(sets) != 3 {
		t.Fatalf("got %d sets", len(sets))
	}
	for i := 1; i < len(sets); i++ {
		if sets[i-1].SourcePath > sets[i].SourcePath {
			t.Errorf("sets not sorted: %q > %q", sets[i-1].SourcePath, sets[i].SourcePath)
		}
	}
}

func TestScanMaxDepth(t *testing.T) {
	root := t.TempDir()
	writeAudioFiles(t, filepath.Join(root, "shallow"), "01.mp3")
	writeAudioFiles(t, filepath.Join(root, "a", "b", "c", "deep"), "01.mp3")

	s := New(1)
	s.MaxDepth = 2
	sets, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(sets) != 1 {
		t.Fatalf("depth limit ignored: got %d sets", len(sets))
	}
	if filepath.Base(sets[0].SourcePath) != "shallow" {
		t.Errorf("wrong set survived the depth limit: %s", sets[0].SourcePath)
	}
}

func TestScanNonRecursive(t *testing.T) {
	root := t.TempDir()
	writeAudioFiles(t, root, "01.mp3", "02.mp3")
	writeAudioFiles(t, filepath.Join(root, "CD2"), "01.mp3")
	writeAudioFiles(t, filepath.Join(root, "Other Book"), "01.mp3")

	s := New(1)
	s.Recursive = false
	sets, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(sets) != 1 {
		t.Fatalf("got %d sets, want 1 (subdirectories skipped)", len(sets))
	}
	// Disc folders still fold in even when the walk is non-recursive.
	if sets[0].DiscCount != 2 || sets[0].TotalTracks != 3 {
		t.Errorf("tracks/discs = %d/%d, want 3/2", sets[0].TotalTracks, sets[0].DiscCount)
	}
}

func TestScanCanceledContext(t *testing.T) {
	root := t.TempDir()
	writeAudioFiles(t, filepath.Join(root, "Book"), "01.mp3")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(1).Scan(ctx, root); err == nil {
		t.Error("canceled context must abort the scan")
	}
}

func TestScanFolderYearGuess(t *testing.T) {
	root := t.TempDir()
	writeAudioFiles(t, filepath.Join(root, "The Martian (2011)"), "01.mp3")

	sets := scanOne(t, root)
	set := sets[0]
	if set.YearGuess == nil || *set.YearGuess != 2011 {
		t.Errorf("year guess = %v, want 2011", set.YearGuess)
	}
	if set.TitleGuess != "The Martian" {
		t.Errorf("title guess = %q", set.TitleGuess)
	}
}
