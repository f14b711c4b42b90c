// file: internal/provider/local.go
// version: 1.2.0
// guid: 5e6f7a8b-9c0d-4e1f-2a3b-4c5d6e7f8a9b

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jdfalk/audiobook-renamer/internal/library"
	"github.com/jdfalk/audiobook-renamer/internal/matcher"
	"github.com/jdfalk/audiobook-renamer/internal/models"
)

// sidecarNames are checked in order inside a set's source directory.
var sidecarNames = []string{"metadata.json", "book.json"}

// Local resolves identities without the network: from the library index of
// previously organized books, and from sidecar metadata files dropped next
// to the audio.
type Local struct {
	index *library.Index
}

// NewLocal creates a local provider over an optional library index. A nil
// index limits the provider to sidecar files.
func NewLocal(index *library.Index) *Local {
	return &Local{index: index}
}

func (p *Local) Name() string { return "local" }

func (p *Local) Weights() matcher.Weights { return matcher.DefaultWeights() }

// Search queries the library index for books matching the query terms.
func (p *Local) Search(ctx context.Context, q Query) ([]models.ProviderIdentity, error) {
	if p.index == nil || q.Empty() {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := q.Title
	if q.Author != "" {
		text += " " + q.Author
	}
	entries, err := p.index.Search(text, 10)
	if err != nil {
		return nil, fmt.Errorf("local: %w", err)
	}

	identities := make([]models.ProviderIdentity, 0, len(entries))
	for _, e := range entries {
		identities = append(identities, e.Identity())
	}
	return identities, nil
}

// GetByID looks up a library entry by its path key.
func (p *Local) GetByID(ctx context.Context, id string) (*models.ProviderIdentity, error) {
	if p.index == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := p.index.Search(id, 1)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	identity := entries[0].Identity()
	return &identity, nil
}

// sidecar is the JSON schema of a metadata sidecar file.
type sidecar struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors,omitempty"`
	Author      string   `json:"author,omitempty"`
	SeriesName  string   `json:"series_name,omitempty"`
	SeriesIndex string   `json:"series_index,omitempty"`
	Year        *int     `json:"year,omitempty"`
	Language    string   `json:"language,omitempty"`
	Narrator    string   `json:"narrator,omitempty"`
	ISBN13      string   `json:"isbn_13,omitempty"`
	ISBN10      string   `json:"isbn_10,omitempty"`
	ASIN        string   `json:"asin,omitempty"`
}

// ReadSidecar loads an identity from a sidecar metadata file in dir. A
// sidecar is authoritative: when present and valid it bypasses provider
// matching entirely. Returns nil with no error when no sidecar exists.
func ReadSidecar(dir string) (*models.ProviderIdentity, error) {
	for _, name := range sidecarNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read sidecar %s: %w", path, err)
		}

		var sc sidecar
		if err := json.Unmarshal(data, &sc); err != nil {
			return nil, fmt.Errorf("invalid sidecar %s: %w", path, err)
		}
		if sc.Title == "" {
			return nil, fmt.Errorf("sidecar %s has no title", path)
		}

		identity := models.ProviderIdentity{
			Provider:    "sidecar",
			ExternalID:  path,
			Title:       sc.Title,
			Authors:     sc.Authors,
			SeriesName:  sc.SeriesName,
			SeriesIndex: sc.SeriesIndex,
			Year:        sc.Year,
			Language:    sc.Language,
			Narrator:    sc.Narrator,
			ISBN13:      sc.ISBN13,
			ISBN10:      sc.ISBN10,
			ASIN:        sc.ASIN,
		}
		if len(identity.Authors) == 0 && sc.Author != "" {
			identity.Authors = []string{sc.Author}
		}
		return &identity, nil
	}
	return nil, nil
}
