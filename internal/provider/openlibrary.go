// file: internal/provider/openlibrary.go
// version: 1.4.0
// guid: 1a2b3c4d-5e6f-7a8b-9c0d-1e2f3a4b5c6d

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/jdfalk/audiobook-renamer/internal/matcher"
	"github.com/jdfalk/audiobook-renamer/internal/models"
)

// OpenLibrary queries the Open Library search API. No API key required.
type OpenLibrary struct {
	httpClient *http.Client
	baseURL    string
}

// NewOpenLibrary creates an Open Library provider. The base URL can be
// overridden via OPENLIBRARY_BASE_URL for tests and mirrors.
func NewOpenLibrary() *OpenLibrary {
	baseURL := os.Getenv("OPENLIBRARY_BASE_URL")
	if baseURL == "" {
		baseURL = "https://openlibrary.org"
	}
	return NewOpenLibraryWithBaseURL(baseURL)
}

// NewOpenLibraryWithBaseURL creates a provider with a custom base URL.
func NewOpenLibraryWithBaseURL(baseURL string) *OpenLibrary {
	return &OpenLibrary{
		httpClient: newHTTPClient(),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (p *OpenLibrary) Name() string { return "openlibrary" }

func (p *OpenLibrary) Weights() matcher.Weights { return matcher.DefaultWeights() }

// olSearchDoc is one document in an Open Library search response.
type olSearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	Publisher        []string `json:"publisher"`
	Language         []string `json:"language"`
	CoverI           int      `json:"cover_i"`
}

type olSearchResponse struct {
	NumFound int           `json:"numFound"`
	Docs     []olSearchDoc `json:"docs"`
}

// Search queries search.json with title and author terms.
func (p *OpenLibrary) Search(ctx context.Context, q Query) ([]models.ProviderIdentity, error) {
	if q.Empty() {
		return nil, nil
	}

	params := url.Values{}
	if q.Title != "" {
		params.Set("title", q.Title)
	}
	if q.Author != "" {
		params.Set("author", q.Author)
	}
	params.Set("limit", "10")

	var resp olSearchResponse
	if err := p.getJSON(ctx, fmt.Sprintf("%s/search.json?%s", p.baseURL, params.Encode()), &resp); err != nil {
		return nil, err
	}

	identities := make([]models.ProviderIdentity, 0, len(resp.Docs))
	for _, doc := range resp.Docs {
		identities = append(identities, p.docToIdentity(doc))
	}
	return identities, nil
}

// GetByID fetches one work record by its Open Library key (e.g. OL123W).
func (p *OpenLibrary) GetByID(ctx context.Context, id string) (*models.ProviderIdentity, error) {
	var work struct {
		Key         string `json:"key"`
		Title       string `json:"title"`
		Description any    `json:"description"`
	}
	if err := p.getJSON(ctx, fmt.Sprintf("%s/works/%s.json", p.baseURL, url.PathEscape(id)), &work); err != nil {
		return nil, err
	}
	if work.Title == "" {
		return nil, nil
	}

	identity := models.ProviderIdentity{
		Provider:   p.Name(),
		ExternalID: strings.TrimPrefix(work.Key, "/works/"),
		Title:      work.Title,
	}
	switch d := work.Description.(type) {
	case string:
		identity.Description = d
	case map[string]any:
		if v, ok := d["value"].(string); ok {
			identity.Description = v
		}
	}
	return &identity, nil
}

func (p *OpenLibrary) docToIdentity(doc olSearchDoc) models.ProviderIdentity {
	identity := models.ProviderIdentity{
		Provider:   p.Name(),
		ExternalID: strings.TrimPrefix(doc.Key, "/works/"),
		Title:      doc.Title,
		Authors:    doc.AuthorName,
	}
	if doc.FirstPublishYear > 0 {
		year := doc.FirstPublishYear
		identity.Year = &year
	}
	if len(doc.Language) > 0 {
		identity.Language = doc.Language[0]
	}
	if len(doc.Publisher) > 0 {
		identity.Publisher = doc.Publisher[0]
	}
	for _, isbn := range doc.ISBN {
		switch len(isbn) {
		case 13:
			if identity.ISBN13 == "" {
				identity.ISBN13 = isbn
			}
		case 10:
			if identity.ISBN10 == "" {
				identity.ISBN10 = isbn
			}
		}
	}
	if doc.CoverI > 0 {
		identity.CoverURLs = []string{
			fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", doc.CoverI),
		}
	}
	return identity
}

func (p *OpenLibrary) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openlibrary: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openlibrary: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return decodeError("openlibrary", err)
	}
	return nil
}
