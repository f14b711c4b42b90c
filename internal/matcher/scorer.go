// file: internal/matcher/scorer.go
// version: 1.3.0
// guid: 0a1b2c3d-4e5f-4a6b-9c8d-7e6f5a4b3c2d

package matcher

import (
	"sort"
	"strings"

	"github.com/jdfalk/audiobook-renamer/internal/models"
)

// Weights is the per-provider scoring weight table. A zero weight disables
// the corresponding signal. Weights only count toward the denominator when
// the signal is actually comparable, so absent metadata never penalizes.
type Weights struct {
	Title        float64
	Author       float64
	Series       float64
	Narrator     float64
	Year         float64
	Language     float64
	PublicDomain float64
}

// DefaultWeights is the standard table for providers with series and year
// metadata.
func DefaultWeights() Weights {
	return Weights{
		Title:    0.4,
		Author:   0.3,
		Series:   0.15,
		Language: 0.1,
		Year:     0.05,
	}
}

// SparseWeights suits providers with little metadata beyond title/author;
// title carries more weight and public-domain flags earn a small bonus.
func SparseWeights() Weights {
	return Weights{
		Title:        0.5,
		Author:       0.35,
		Language:     0.1,
		PublicDomain: 0.05,
	}
}

// NarratorWeights suits providers that return narrator data.
func NarratorWeights() Weights {
	return Weights{
		Title:    0.4,
		Author:   0.3,
		Series:   0.15,
		Narrator: 0.1,
		Year:     0.05,
	}
}

// Score computes the weighted similarity between an audiobook set's guessed
// metadata and a provider identity. The result is in [0,1]; 0.0 when no
// signal could be compared.
func Score(set *models.AudiobookSet, identity *models.ProviderIdentity, w Weights) float64 {
	score := 0.0
	totalWeight := 0.0

	if w.Title > 0 && set.TitleGuess != "" && identity.Title != "" {
		score += SimilarityRatio(set.TitleGuess, identity.Title) * w.Title
		totalWeight += w.Title
	}

	if w.Author > 0 && set.AuthorGuess != "" && len(identity.Authors) > 0 {
		best := 0.0
		for _, author := range identity.Authors {
			if r := SimilarityRatio(set.AuthorGuess, author); r > best {
				best = r
			}
		}
		score += best * w.Author
		totalWeight += w.Author
	}

	if w.Series > 0 && set.SeriesGuess != "" && identity.SeriesName != "" {
		score += SimilarityRatio(set.SeriesGuess, identity.SeriesName) * w.Series
		totalWeight += w.Series
	}

	if w.Narrator > 0 && set.NarratorGuess != "" && identity.Narrator != "" {
		score += SimilarityRatio(set.NarratorGuess, identity.Narrator) * w.Narrator
		totalWeight += w.Narrator
	}

	if w.Year > 0 && set.YearGuess != nil && identity.Year != nil {
		score += yearProximity(*set.YearGuess, *identity.Year) * w.Year
		totalWeight += w.Year
	}

	if w.Language > 0 && set.LanguageGuess != "" && identity.Language != "" {
		if strings.EqualFold(set.LanguageGuess, identity.Language) {
			score += 1.0 * w.Language
		}
		totalWeight += w.Language
	}

	if w.PublicDomain > 0 {
		if pd, ok := identity.Raw["public_domain"].(bool); ok && pd {
			score += 1.0 * w.PublicDomain
			totalWeight += w.PublicDomain
		}
	}

	if totalWeight == 0 {
		return 0.0
	}

	score /= totalWeight
	if score < 0 {
		return 0.0
	}
	if score > 1 {
		return 1.0
	}
	return score
}

// yearProximity maps the distance between two publication years onto [0,1].
func yearProximity(a, b int) float64 {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff == 0:
		return 1.0
	case diff <= 2:
		return 0.8
	case diff <= 5:
		return 0.5
	default:
		return 0.0
	}
}

// Reasons produces human-readable match reasons. They are generated from
// substring containment independently of the numeric score, plus a
// categorical comment derived from the score bucket.
func Reasons(set *models.AudiobookSet, identity *models.ProviderIdentity, score float64) []string {
	var reasons []string

	if set.TitleGuess != "" && identity.Title != "" &&
		strings.Contains(strings.ToLower(identity.Title), strings.ToLower(set.TitleGuess)) {
		reasons = append(reasons, "Title match")
	}

	if set.AuthorGuess != "" {
		guess := strings.ToLower(set.AuthorGuess)
		for _, author := range identity.Authors {
			if strings.Contains(strings.ToLower(author), guess) {
				reasons = append(reasons, "Author match")
				break
			}
		}
	}

	if set.SeriesGuess != "" && identity.SeriesName != "" &&
		strings.Contains(strings.ToLower(identity.SeriesName), strings.ToLower(set.SeriesGuess)) {
		reasons = append(reasons, "Series match")
	}

	switch {
	case score > 0.85:
		reasons = append(reasons, "High confidence match")
	case score >= 0.65:
		reasons = append(reasons, "Good match")
	default:
		reasons = append(reasons, "Possible match")
	}

	return reasons
}

// Rank builds scored candidates for a batch of identities and sorts them
// descending by confidence. The sort is stable so provider return order
// breaks ties deterministically regardless of lookup concurrency.
func Rank(set *models.AudiobookSet, identities []models.ProviderIdentity, w Weights) []models.MatchCandidate {
	candidates := make([]models.MatchCandidate, 0, len(identities))
	for i := range identities {
		s := Score(set, &identities[i], w)
		candidates = append(candidates, models.NewMatchCandidate(identities[i], s, Reasons(set, &identities[i], s)))
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates
}
