// file: internal/ai/parser.go
// version: 2.0.0
// guid: 9a0b1c2d-3e4f-5a6b-7c8d-9e0f1a2b3c4d

// Package ai extracts audiobook metadata from folder names that defeat the
// pattern-based classifier. It is an optional fallback: the parser is a
// no-op unless explicitly enabled with an API key.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/jdfalk/audiobook-renamer/internal/models"
)

// ParsedName is the structured result for one folder name.
type ParsedName struct {
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Series      string `json:"series,omitempty"`
	SeriesIndex int    `json:"series_index,omitempty"`
	Narrator    string `json:"narrator,omitempty"`
	Year        int    `json:"year,omitempty"`
	Language    string `json:"language,omitempty"`
	Confidence  string `json:"confidence"` // high, medium, low
}

// Parser handles AI-powered folder name parsing
type Parser struct {
	client  *openai.Client
	model   string
	enabled bool
}

// NewParser creates a folder-name parser. A missing key disables it.
func NewParser(apiKey string, enabled bool) *Parser {
	if !enabled || apiKey == "" {
		return &Parser{enabled: false}
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &Parser{
		client:  &client,
		model:   "gpt-4o-mini", // Fast and cost-effective
		enabled: true,
	}
}

// IsEnabled returns whether the parser is enabled
func (p *Parser) IsEnabled() bool {
	return p.enabled
}

const systemPrompt = `You are an expert at parsing audiobook folder names. Extract structured metadata.

Common patterns:
- "Author - Title" or "Title - Author"
- "Series Name Book N" or "Title (Series Name #N)"
- May include narrator: "Title - Author - read by Narrator"
- May include year: "Title (2020)"
- May include noise: "[Unabridged]", "[64kbps]", release-group tags

Return ONLY valid JSON with these fields (omit if not found):
{
  "title": "book title",
  "author": "author name",
  "series": "series name",
  "series_index": 1,
  "narrator": "narrator name",
  "year": 2020,
  "language": "en",
  "confidence": "high|medium|low"
}

Set confidence based on clarity of the folder name structure.`

// ParseFolderName asks the model to parse one folder name.
func (p *Parser) ParseFolderName(ctx context.Context, name string) (*ParsedName, error) {
	if !p.enabled {
		return nil, fmt.Errorf("AI parser is not enabled")
	}

	jsonObjectFormat := shared.NewResponseFormatJSONObjectParam()

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(fmt.Sprintf("Parse this audiobook folder name:\n\n%s", name)),
		},
		Model:       shared.ChatModel(p.model),
		Temperature: param.NewOpt(0.1),
		MaxTokens:   param.NewOpt[int64](500),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &jsonObjectFormat,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("AI parse failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}

	var parsed ParsedName
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}
	if parsed.Title == "" {
		return nil, fmt.Errorf("model returned no title for %q", name)
	}
	return &parsed, nil
}

// Enrich fills a set's empty guesses from an AI parse of its folder name.
// Existing guesses are never overwritten; low-confidence parses are only
// used for the title when nothing else produced one.
func (p *Parser) Enrich(ctx context.Context, set *models.AudiobookSet, folderName string) error {
	parsed, err := p.ParseFolderName(ctx, folderName)
	if err != nil {
		return err
	}

	if set.TitleGuess == "" {
		set.TitleGuess = parsed.Title
	}
	if parsed.Confidence == "low" {
		set.AddWarning("AI parse of %q is low confidence; only title used", folderName)
		return nil
	}

	if set.AuthorGuess == "" {
		set.AuthorGuess = parsed.Author
	}
	if set.SeriesGuess == "" {
		set.SeriesGuess = parsed.Series
	}
	if set.VolumeGuess == "" && parsed.SeriesIndex > 0 {
		set.VolumeGuess = strconv.Itoa(parsed.SeriesIndex)
	}
	if set.NarratorGuess == "" {
		set.NarratorGuess = parsed.Narrator
	}
	if set.LanguageGuess == "" {
		set.LanguageGuess = parsed.Language
	}
	if set.YearGuess == nil && parsed.Year > 0 {
		year := parsed.Year
		set.YearGuess = &year
	}
	return nil
}
