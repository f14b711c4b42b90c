// file: internal/classify/classify_test.go
// version: 1.1.0
// guid: 5b6c7d8e-9f0a-4b1c-2d3e-4f5a6b7c8d9e

package classify

import (
	"testing"
)

func TestTrackNumber(t *testing.T) {
	tests := []struct {
		name   string
		stem   string
		tagged *int
		want   int
		wantOK bool
	}{
		{
			name:   "leading zero padded number",
			stem:   "001 Introduction",
			want:   1,
			wantOK: true,
		},
		{
			name:   "leading number with dash",
			stem:   "01 - Chapter One",
			want:   1,
			wantOK: true,
		},
		{
			name:   "track keyword",
			stem:   "Track 12",
			want:   12,
			wantOK: true,
		},
		{
			name:   "chapter keyword",
			stem:   "Chapter 7 - The Escape",
			want:   7,
			wantOK: true,
		},
		{
			name:   "abbreviated chapter",
			stem:   "ch03",
			want:   3,
			wantOK: true,
		},
		{
			name:   "part keyword",
			stem:   "Part 2",
			want:   2,
			wantOK: true,
		},
		{
			name:   "leading number wins over later keyword",
			stem:   "05 Chapter 9",
			want:   5,
			wantOK: true,
		},
		{
			name:   "no number anywhere",
			stem:   "Introduction",
			want:   0,
			wantOK: false,
		},
		{
			name:   "tagged number beats filename",
			stem:   "99 Whatever",
			tagged: intPtr(4),
			want:   4,
			wantOK: true,
		},
		{
			name:   "year-like digits still parse as literal value",
			stem:   "1984",
			want:   1984,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TrackNumber(tt.stem, tt.tagged)
			if ok != tt.wantOK {
				t.Fatalf("TrackNumber(%q) ok = %v, want %v", tt.stem, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("TrackNumber(%q) = %d, want %d", tt.stem, got, tt.want)
			}
		})
	}
}

func TestDiscNumber(t *testing.T) {
	tests := []struct {
		name          string
		segments      []string
		tagged        *int
		want          int
		wantAmbiguous bool
	}{
		{
			name:     "no disc markers defaults to one",
			segments: []string{"Some Book"},
			want:     1,
		},
		{
			name:     "cd folder",
			segments: []string{"CD2"},
			want:     2,
		},
		{
			name:     "disc folder with space",
			segments: []string{"Disc 03"},
			want:     3,
		},
		{
			name:     "nearest to root wins",
			segments: []string{"Disc 2", "CD 1"},
			want:     2,
			// two markers in the path is ambiguous
			wantAmbiguous: true,
		},
		{
			name:   "tagged disc wins",
			tagged: intPtr(5),
			want:   5,
		},
		{
			name:     "non-disc folder ignored",
			segments: []string{"bonus content"},
			want:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ambiguous := DiscNumber(tt.segments, tt.tagged)
			if got != tt.want {
				t.Errorf("DiscNumber(%v) = %d, want %d", tt.segments, got, tt.want)
			}
			if ambiguous != tt.wantAmbiguous {
				t.Errorf("DiscNumber(%v) ambiguous = %v, want %v", tt.segments, ambiguous, tt.wantAmbiguous)
			}
		})
	}
}

func TestIsDiscFolder(t *testing.T) {
	tests := []struct {
		name   string
		want   int
		wantOK bool
	}{
		{"CD1", 1, true},
		{"cd 12", 12, true},
		{"Disc 02", 2, true},
		{"disc-3", 3, true},
		{"Book 2", 2, true},
		{"Volume 4", 4, true},
		{"Vol. 7", 7, true},
		{"The Way of Kings", 0, false},
		{"CDs", 0, false},
	}

	for _, tt := range tests {
		got, ok := IsDiscFolder(tt.name)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("IsDiscFolder(%q) = (%d, %v), want (%d, %v)", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseFolderName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Guesses
	}{
		{
			name: "author dash title",
			in:   "Brandon Sanderson - The Way of Kings",
			want: Guesses{Author: "Brandon Sanderson", Title: "The Way of Kings"},
		},
		{
			name: "series with book number",
			in:   "Stormlight Archive Book 1",
			want: Guesses{Title: "Stormlight Archive Book 1", Series: "Stormlight Archive", Volume: "1"},
		},
		{
			name: "volume keyword",
			in:   "Discworld Vol 3",
			want: Guesses{Title: "Discworld Vol 3", Series: "Discworld", Volume: "3"},
		},
		{
			name: "bracket noise stripped",
			in:   "The Martian [Unabridged] [64kbps]",
			want: Guesses{Title: "The Martian"},
		},
		{
			name: "paren noise stripped before split",
			in:   "Andy Weir - The Martian (2011)",
			want: Guesses{Author: "Andy Weir", Title: "The Martian"},
		},
		{
			name: "multiple dashes too ambiguous to split",
			in:   "Foo - Bar - Baz",
			want: Guesses{Title: "Foo - Bar - Baz"},
		},
		{
			name: "plain title",
			in:   "Project Hail Mary",
			want: Guesses{Title: "Project Hail Mary"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFolderName(tt.in)
			if got != tt.want {
				t.Errorf("ParseFolderName(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func intPtr(n int) *int { return &n }
