// file: internal/provider/librivox.go
// version: 1.2.0
// guid: 4d5e6f7a-8b9c-4d0e-1f2a-3b4c5d6e7f8a

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

// LibriVox queries the LibriVox catalog of public-domain recordings. The
// API exposes little metadata beyond title and author, so sparse weights
// apply and every result carries a public-domain flag.
type LibriVox struct {
	httpClient *http.Client
	baseURL    string
}

// NewLibriVox creates a LibriVox provider.
func NewLibriVox() *LibriVox {
	return &LibriVox{
		httpClient: newHTTPClient(),
		baseURL:    "https://librivox.org/api/feed/audiobooks",
	}
}

func (p *LibriVox) Name() string { return "librivox" }

func (p *LibriVox) Weights() matcher.Weights { return matcher.SparseWeights() }

type lvBook struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Language      string `json:"language"`
	CopyrightYear string `json:"copyright_year"`
	URLLibrivox   string `json:"url_librivox"`
	Authors       []struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"authors"`
}

type lvResponse struct {
	Books []lvBook `json:"books"`
}

// Search queries the feed by exact-ish title. LibriVox has no author search
// parameter; author filtering happens at scoring time.
func (p *LibriVox) Search(ctx context.Context, q Query) ([]models.ProviderIdentity, error) {
	if q.Title == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("title", q.Title)
	params.Set("format", "json")
	params.Set("extended", "1")
	params.Set("limit", "10")

	var resp lvResponse
	if err := p.getJSON(ctx, fmt.Sprintf("%s/?%s", p.baseURL, params.Encode()), &resp); err != nil {
		return nil, err
	}

	identities := make([]models.ProviderIdentity, 0, len(resp.Books))
	for _, book := range resp.Books {
		identities = append(identities, p.bookToIdentity(book))
	}
	return identities, nil
}

// GetByID fetches one recording by its LibriVox id.
func (p *LibriVox) GetByID(ctx context.Context, id string) (*models.ProviderIdentity, error) {
	params := url.Values{}
	params.Set("id", id)
	params.Set("format", "json")
	params.Set("extended", "1")

	var resp lvResponse
	if err := p.getJSON(ctx, fmt.Sprintf("%s/?%s", p.baseURL, params.Encode()), &resp); err != nil {
		return nil, err
	}
	if len(resp.Books) == 0 {
		return nil, nil
	}
	identity := p.bookToIdentity(resp.Books[0])
	return &identity, nil
}

func (p *LibriVox) bookToIdentity(book lvBook) models.ProviderIdentity {
	identity := models.ProviderIdentity{
		Provider:    p.Name(),
		ExternalID:  book.ID,
		Title:       book.Title,
		Language:    book.Language,
		Description: book.Description,
		Raw: map[string]interface{}{
			"public_domain": true,
			"url":           book.URLLibrivox,
		},
	}
	for _, a := range book.Authors {
		name := strings.TrimSpace(a.FirstName + " " + a.LastName)
		if name != "" {
			identity.Authors = append(identity.Authors, name)
		}
	}
	if year, err := strconv.Atoi(book.CopyrightYear); err == nil && year > 0 {
		identity.Year = &year
	}
	return identity
}

func (p *LibriVox) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("librivox: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("librivox: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return decodeError("librivox", err)
	}
	return nil
}
