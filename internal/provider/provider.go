// file: internal/provider/provider.go
// version: 1.3.0
// guid: 2b3c4d5e-6f7a-4b8c-9d0e-1f2a3b4c5d6e

// Package provider looks up canonical bibliographic identities from
// external metadata sources. Each provider wraps one API; the manager
// queries them in priority order with rate limiting and response caching.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jdfalk/audiobook-renamer/internal/matcher"
	"github.com/jdfalk/audiobook-renamer/internal/models"
)

// Provider is one metadata source. Search returns an empty slice (not an
// error) when nothing matches; errors are reserved for transport and
// decoding failures.
type Provider interface {
	Name() string
	Search(ctx context.Context, q Query) ([]models.ProviderIdentity, error)
	GetByID(ctx context.Context, id string) (*models.ProviderIdentity, error)
	Weights() matcher.Weights
}

// Query carries the search signals extracted from an audiobook set.
type Query struct {
	Title    string
	Author   string
	Series   string
	Language string
}

// FromSet builds a provider query from a set's guesses.
func FromSet(set *models.AudiobookSet) Query {
	return Query{
		Title:    set.TitleGuess,
		Author:   set.AuthorGuess,
		Series:   set.SeriesGuess,
		Language: set.LanguageGuess,
	}
}

// CacheKey is the canonical string form of a query used for cache lookups.
func (q Query) CacheKey() string {
	return strings.ToLower(strings.Join([]string{q.Title, q.Author, q.Series, q.Language}, "|"))
}

// Empty reports whether the query carries no usable signal.
func (q Query) Empty() bool {
	return q.Title == "" && q.Author == ""
}

// newHTTPClient is the shared client constructor for API-backed providers.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
	}
}

// decodeError wraps a provider decoding failure with its source.
func decodeError(provider string, err error) error {
	return fmt.Errorf("%s: failed to decode response: %w", provider, err)
}
