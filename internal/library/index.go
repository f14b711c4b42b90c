// file: internal/library/index.go
// version: 1.2.0
// guid: 1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5e

// Package library maintains a full-text index of already-organized
// audiobooks. The index backs the local metadata provider and the search
// command, so a book organized once can resolve siblings in the same series
// without a network lookup.
package library

import (
	"fmt"
	"os"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/jdfalk/audiobook-renamer/internal/models"
)

// Entry is one indexed audiobook.
type Entry struct {
	Path        string `json:"path"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	SeriesName  string `json:"series_name,omitempty"`
	SeriesIndex string `json:"series_index,omitempty"`
	Narrator    string `json:"narrator,omitempty"`
	Language    string `json:"language,omitempty"`
	Year        int    `json:"year,omitempty"`
	Provider    string `json:"provider,omitempty"`
	ExternalID  string `json:"external_id,omitempty"`
}

// Index is a searchable catalog of organized audiobooks.
type Index struct {
	idx bleve.Index
}

// Open opens the index at path, creating it if absent.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == nil {
		return &Index{idx: idx}, nil
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return nil, fmt.Errorf("failed to open library index at %s: %w", path, err)
	}

	idx, err = bleve.New(path, buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create library index at %s: %w", path, err)
	}
	return &Index{idx: idx}, nil
}

func buildMapping() mapping.IndexMapping {
	entry := bleve.NewDocumentMapping()

	text := bleve.NewTextFieldMapping()
	entry.AddFieldMappingsAt("title", text)
	entry.AddFieldMappingsAt("author", text)
	entry.AddFieldMappingsAt("series_name", text)
	entry.AddFieldMappingsAt("narrator", text)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = entry
	return m
}

// Close closes the underlying index.
func (i *Index) Close() error {
	return i.idx.Close()
}

// Add indexes one entry, keyed by its destination path.
func (i *Index) Add(e Entry) error {
	if e.Path == "" {
		return fmt.Errorf("library entry has no path")
	}
	return i.idx.Index(e.Path, e)
}

// AddIdentity indexes the chosen identity of an organized set.
func (i *Index) AddIdentity(destPath string, identity *models.ProviderIdentity) error {
	e := Entry{
		Path:        destPath,
		Title:       identity.Title,
		Author:      identity.PrimaryAuthor(),
		SeriesName:  identity.SeriesName,
		SeriesIndex: identity.SeriesIndex,
		Narrator:    identity.Narrator,
		Language:    identity.Language,
		Provider:    identity.Provider,
		ExternalID:  identity.ExternalID,
	}
	if identity.Year != nil {
		e.Year = *identity.Year
	}
	return i.Add(e)
}

// Remove deletes an entry by path.
func (i *Index) Remove(path string) error {
	return i.idx.Delete(path)
}

// Count returns the number of indexed books.
func (i *Index) Count() (uint64, error) {
	return i.idx.DocCount()
}

// Search runs a free-text query over title, author, series, and narrator
// and returns up to limit entries, best first.
func (i *Index) Search(query string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"*"}

	result, err := i.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("library search failed: %w", err)
	}

	entries := make([]Entry, 0, len(result.Hits))
	for _, hit := range result.Hits {
		entries = append(entries, entryFromFields(hit.ID, hit.Fields))
	}
	return entries, nil
}

func entryFromFields(id string, fields map[string]interface{}) Entry {
	str := func(key string) string {
		if v, ok := fields[key].(string); ok {
			return v
		}
		return ""
	}

	e := Entry{
		Path:        id,
		Title:       str("title"),
		Author:      str("author"),
		SeriesName:  str("series_name"),
		SeriesIndex: str("series_index"),
		Narrator:    str("narrator"),
		Language:    str("language"),
		Provider:    str("provider"),
		ExternalID:  str("external_id"),
	}
	switch v := fields["year"].(type) {
	case float64:
		e.Year = int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			e.Year = n
		}
	}
	return e
}

// Identity converts an indexed entry back into a provider identity.
func (e Entry) Identity() models.ProviderIdentity {
	id := models.ProviderIdentity{
		Provider:    "local",
		ExternalID:  e.Path,
		Title:       e.Title,
		SeriesName:  e.SeriesName,
		SeriesIndex: e.SeriesIndex,
		Narrator:    e.Narrator,
		Language:    e.Language,
	}
	if e.Author != "" {
		id.Authors = []string{e.Author}
	}
	if e.Year > 0 {
		year := e.Year
		id.Year = &year
	}
	return id
}
