// Package bibleapi is the client for the remote verse text service
// (bible-api.com). The service is consumed through two operations,
// FetchChapter and FetchVerse; both fail with a LookupError on a
// non-success response or transport failure.
package bibleapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public bible-api.com endpoint. No authentication
// is required.
const DefaultBaseURL = "https://bible-api.com"

// DefaultTimeout bounds every lookup so a stalled remote cannot hang an
// export indefinitely.
const DefaultTimeout = 10 * time.Second

// Chapter is the service's response shape for both chapter and single
// verse lookups; a verse lookup simply narrows Verses to one element.
type Chapter struct {
	Reference       string  `json:"reference"`
	Verses          []Verse `json:"verses"`
	Text            string  `json:"text"`
	TranslationID   string  `json:"translation_id"`
	TranslationName string  `json:"translation_name"`
	TranslationNote string  `json:"translation_note,omitempty"`
}

type Verse struct {
	BookID   string `json:"book_id"`
	BookName string `json:"book_name"`
	Chapter  int    `json:"chapter"`
	Verse    int    `json:"verse"`
	Text     string `json:"text"`
}

// Client fetches chapter and verse text over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for the given base URL (DefaultBaseURL when
// empty) with a bounded per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// Book names with spaces or non-standard spellings need massaging into
// the service's URL form.
var bookNameOverrides = map[string]string{
	"1 Samuel":        "1samuel",
	"2 Samuel":        "2samuel",
	"1 Kings":         "1kings",
	"2 Kings":         "2kings",
	"1 Chronicles":    "1chronicles",
	"2 Chronicles":    "2chronicles",
	"Song of Songs":   "songofsolomon",
	"1 Corinthians":   "1corinthians",
	"2 Corinthians":   "2corinthians",
	"1 Thessalonians": "1thessalonians",
	"2 Thessalonians": "2thessalonians",
	"1 Timothy":       "1timothy",
	"2 Timothy":       "2timothy",
	"1 Peter":         "1peter",
	"2 Peter":         "2peter",
	"1 John":          "1john",
	"2 John":          "2john",
	"3 John":          "3john",
}

func normalizeBookName(book string) string {
	if mapped, ok := bookNameOverrides[book]; ok {
		return mapped
	}
	return strings.ToLower(strings.ReplaceAll(book, " ", ""))
}

// FetchChapter returns the full text of a chapter.
func (c *Client) FetchChapter(ctx context.Context, book string, chapter int, translation string) (*Chapter, error) {
	reference := fmt.Sprintf("%s %d", book, chapter)
	url := fmt.Sprintf("%s/%s+%d?translation=%s", c.baseURL, normalizeBookName(book), chapter, translation)
	return c.fetch(ctx, reference, url)
}

// FetchVerse returns the text of a single verse.
func (c *Client) FetchVerse(ctx context.Context, book string, chapter, verse int, translation string) (*Chapter, error) {
	reference := fmt.Sprintf("%s %d:%d", book, chapter, verse)
	url := fmt.Sprintf("%s/%s+%d:%d?translation=%s", c.baseURL, normalizeBookName(book), chapter, verse, translation)
	return c.fetch(ctx, reference, url)
}

func (c *Client) fetch(ctx context.Context, reference, url string) (*Chapter, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LookupError{Reference: reference, Err: err}
	}
	req.Header.Set("User-Agent", "Lectern/1.0 (https://github.com/mfarrell/lectern)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &LookupError{Reference: reference, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LookupError{Reference: reference, StatusCode: resp.StatusCode}
	}

	var chapter Chapter
	if err := json.NewDecoder(resp.Body).Decode(&chapter); err != nil {
		return nil, &LookupError{Reference: reference, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &chapter, nil
}
