// file: internal/provider/googlebooks.go
// version: 1.2.0
// guid: 3c4d5e6f-7a8b-4c9d-0e1f-2a3b4c5d6e7f

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jdfalk/audiobook-renamer/internal/matcher"
	"github.com/jdfalk/audiobook-renamer/internal/models"
)

// GoogleBooks queries the Google Books volumes API. An API key is optional;
// unauthenticated requests work at a lower quota.
type GoogleBooks struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewGoogleBooks creates a Google Books provider.
func NewGoogleBooks(apiKey string) *GoogleBooks {
	return &GoogleBooks{
		httpClient: newHTTPClient(),
		baseURL:    "https://www.googleapis.com/books/v1",
		apiKey:     apiKey,
	}
}

func (p *GoogleBooks) Name() string { return "googlebooks" }

func (p *GoogleBooks) Weights() matcher.Weights { return matcher.DefaultWeights() }

type gbVolume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title               string   `json:"title"`
		Authors             []string `json:"authors"`
		Publisher           string   `json:"publisher"`
		PublishedDate       string   `json:"publishedDate"`
		Description         string   `json:"description"`
		Language            string   `json:"language"`
		IndustryIdentifiers []struct {
			Type       string `json:"type"`
			Identifier string `json:"identifier"`
		} `json:"industryIdentifiers"`
		ImageLinks struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

type gbSearchResponse struct {
	TotalItems int        `json:"totalItems"`
	Items      []gbVolume `json:"items"`
}

// Search queries the volumes endpoint using intitle:/inauthor: qualifiers.
func (p *GoogleBooks) Search(ctx context.Context, q Query) ([]models.ProviderIdentity, error) {
	if q.Empty() {
		return nil, nil
	}

	var terms []string
	if q.Title != "" {
		terms = append(terms, fmt.Sprintf("intitle:%q", q.Title))
	}
	if q.Author != "" {
		terms = append(terms, fmt.Sprintf("inauthor:%q", q.Author))
	}

	params := url.Values{}
	params.Set("q", strings.Join(terms, " "))
	params.Set("maxResults", "10")
	if p.apiKey != "" {
		params.Set("key", p.apiKey)
	}

	var resp gbSearchResponse
	if err := p.getJSON(ctx, fmt.Sprintf("%s/volumes?%s", p.baseURL, params.Encode()), &resp); err != nil {
		return nil, err
	}

	identities := make([]models.ProviderIdentity, 0, len(resp.Items))
	for _, item := range resp.Items {
		identities = append(identities, p.volumeToIdentity(item))
	}
	return identities, nil
}

// GetByID fetches one volume record.
func (p *GoogleBooks) GetByID(ctx context.Context, id string) (*models.ProviderIdentity, error) {
	params := url.Values{}
	if p.apiKey != "" {
		params.Set("key", p.apiKey)
	}
	u := fmt.Sprintf("%s/volumes/%s", p.baseURL, url.PathEscape(id))
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}

	var vol gbVolume
	if err := p.getJSON(ctx, u, &vol); err != nil {
		return nil, err
	}
	if vol.VolumeInfo.Title == "" {
		return nil, nil
	}
	identity := p.volumeToIdentity(vol)
	return &identity, nil
}

func (p *GoogleBooks) volumeToIdentity(vol gbVolume) models.ProviderIdentity {
	info := vol.VolumeInfo
	identity := models.ProviderIdentity{
		Provider:    p.Name(),
		ExternalID:  vol.ID,
		Title:       info.Title,
		Authors:     info.Authors,
		Publisher:   info.Publisher,
		Description: info.Description,
		Language:    info.Language,
	}
	// publishedDate can be "2010", "2010-05", or "2010-05-14".
	if len(info.PublishedDate) >= 4 {
		if year, err := strconv.Atoi(info.PublishedDate[:4]); err == nil && year > 0 {
			identity.Year = &year
		}
	}
	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			identity.ISBN13 = id.Identifier
		case "ISBN_10":
			identity.ISBN10 = id.Identifier
		}
	}
	if info.ImageLinks.Thumbnail != "" {
		identity.CoverURLs = []string{info.ImageLinks.Thumbnail}
	}
	return identity
}

func (p *GoogleBooks) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("googlebooks: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("googlebooks: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return decodeError("googlebooks", err)
	}
	return nil
}
