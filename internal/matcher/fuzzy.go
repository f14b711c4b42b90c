// file: internal/matcher/fuzzy.go
// version: 1.1.0
// guid: e5f6a7b8-c9d0-4e1f-a2b3-c4d5e6f7a8b9

package matcher

import (
	"strings"
	"unicode"
)

// LevenshteinDistance computes the case-insensitive edit distance between
// two strings.
func LevenshteinDistance(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	// Single-row DP
	prev := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr := make([]int, lb+1)
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, min(prev[j]+1, prev[j-1]+cost))
		}
		prev = curr
	}
	return prev[lb]
}

// SimilarityRatio returns a normalized [0,1] similarity between two strings
// based on edit distance over the longer length. Comparison is
// case-insensitive and strips non-alphanumeric noise first.
func SimilarityRatio(a, b string) float64 {
	na := normalize(a)
	nb := normalize(b)
	if na == "" && nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}

	dist := LevenshteinDistance(na, nb)
	maxLen := max(len(na), len(nb))
	if maxLen == 0 {
		return 0
	}
	ratio := 1.0 - float64(dist)/float64(maxLen)
	if ratio < 0 {
		return 0
	}
	return ratio
}

// normalize lowercases and strips non-alphanumeric characters except spaces.
func normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
