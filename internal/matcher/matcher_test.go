// file: internal/matcher/matcher_test.go
// version: 2.0.0
// guid: 8c9d0e1f-2a3b-4c5d-6e7f-8a9b0c1d2e3f

package matcher

import (
	"testing"

	"github.com/jdfalk/audiobook-renamer/internal/models"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"Same", "same", 0}, // case-insensitive
	}

	for _, tt := range tests {
		if got := LevenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarityRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "The Way of Kings", "The Way of Kings", 1.0},
		{"case and punctuation ignored", "the way of kings!", "The Way of Kings", 1.0},
		{"empty both", "", "", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SimilarityRatio(tt.a, tt.b); got != tt.want {
				t.Errorf("SimilarityRatio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}

	// Close strings score high but below 1.0.
	got := SimilarityRatio("The Way of Kings", "Way of Kings")
	if got <= 0.5 || got >= 1.0 {
		t.Errorf("SimilarityRatio close strings = %v, want in (0.5, 1.0)", got)
	}
}

func TestScoreCaseInsensitiveIdenticalIsHigh(t *testing.T) {
	// Same title and author differing only in case must land in the high
	// confidence bucket.
	set := &models.AudiobookSet{
		TitleGuess:  "the way of kings",
		AuthorGuess: "brandon sanderson",
	}
	identity := &models.ProviderIdentity{
		Title:   "The Way of Kings",
		Authors: []string{"Brandon Sanderson"},
	}

	score := Score(set, identity, DefaultWeights())
	if score <= 0.85 {
		t.Fatalf("Score = %v, want > 0.85", score)
	}
	if models.ConfidenceForScore(score) != models.ConfidenceHigh {
		t.Errorf("confidence = %s, want high", models.ConfidenceForScore(score))
	}
}

func TestScoreRenormalizesAbsentSignals(t *testing.T) {
	// Only the title is comparable; a perfect title should still reach 1.0
	// because absent signals never count toward the denominator.
	set := &models.AudiobookSet{TitleGuess: "Dune"}
	identity := &models.ProviderIdentity{Title: "Dune"}

	if got := Score(set, identity, DefaultWeights()); got != 1.0 {
		t.Errorf("Score = %v, want 1.0", got)
	}
}

func TestScoreNoSignals(t *testing.T) {
	set := &models.AudiobookSet{}
	identity := &models.ProviderIdentity{}

	if got := Score(set, identity, DefaultWeights()); got != 0.0 {
		t.Errorf("Score with no comparable signals = %v, want 0.0", got)
	}
}

func TestScoreYearProximity(t *testing.T) {
	tests := []struct {
		name      string
		guess     int
		candidate int
		want      float64
	}{
		{"exact", 2010, 2010, 1.0},
		{"within two", 2010, 2012, 0.8},
		{"within five", 2010, 2014, 0.5},
		{"far off", 2010, 2020, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := yearProximity(tt.guess, tt.candidate); got != tt.want {
				t.Errorf("yearProximity(%d, %d) = %v, want %v", tt.guess, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestScorePublicDomainBonus(t *testing.T) {
	set := &models.AudiobookSet{TitleGuess: "Dracula"}
	pd := &models.ProviderIdentity{
		Title: "Dracula",
		Raw:   map[string]interface{}{"public_domain": true},
	}
	plain := &models.ProviderIdentity{Title: "Dracula"}

	w := SparseWeights()
	if Score(set, pd, w) != Score(set, plain, w) {
		// Both renormalize to 1.0 on perfect signals; the bonus shows up
		// when the title is imperfect.
		t.Fatalf("perfect-title scores should match")
	}

	set2 := &models.AudiobookSet{TitleGuess: "Dracula the Undead"}
	pd2 := &models.ProviderIdentity{
		Title: "Dracula",
		Raw:   map[string]interface{}{"public_domain": true},
	}
	plain2 := &models.ProviderIdentity{Title: "Dracula"}
	if Score(set2, pd2, w) <= Score(set2, plain2, w) {
		t.Errorf("public domain flag should raise an imperfect score")
	}
}

func TestRankOrdersByConfidence(t *testing.T) {
	set := &models.AudiobookSet{
		TitleGuess:  "The Way of Kings",
		AuthorGuess: "Brandon Sanderson",
	}
	identities := []models.ProviderIdentity{
		{Title: "The Way of Shadows", Authors: []string{"Brent Weeks"}},
		{Title: "The Way of Kings", Authors: []string{"Brandon Sanderson"}},
		{Title: "Words of Radiance", Authors: []string{"Brandon Sanderson"}},
	}

	candidates := Rank(set, identities, DefaultWeights())
	if len(candidates) != 3 {
		t.Fatalf("got %d candidates, want 3", len(candidates))
	}
	if candidates[0].Identity.Title != "The Way of Kings" {
		t.Errorf("best candidate = %q, want The Way of Kings", candidates[0].Identity.Title)
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Confidence > candidates[i-1].Confidence {
			t.Errorf("candidates not sorted at index %d", i)
		}
	}
	if candidates[0].Level != models.ConfidenceHigh {
		t.Errorf("best level = %s, want high", candidates[0].Level)
	}
}

func TestReasons(t *testing.T) {
	set := &models.AudiobookSet{
		TitleGuess:  "way of kings",
		AuthorGuess: "sanderson",
	}
	identity := &models.ProviderIdentity{
		Title:   "The Way of Kings",
		Authors: []string{"Brandon Sanderson"},
	}

	reasons := Reasons(set, identity, 0.9)
	assertContains(t, reasons, "Title match")
	assertContains(t, reasons, "Author match")
	assertContains(t, reasons, "High confidence match")
}

func assertContains(t *testing.T, haystack []string, want string) {
	t.Helper()
	for _, s := range haystack {
		if s == want {
			return
		}
	}
	t.Errorf("reasons %v missing %q", haystack, want)
}
