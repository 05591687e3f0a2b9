// Package export assembles the portable bookmark document: every bookmark
// is enriched with its verse text (best effort, concurrently) and the
// result is serialized together with the collections.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mfarrell/lectern/internal/bible"
	"github.com/mfarrell/lectern/internal/bibleapi"
	"github.com/mfarrell/lectern/internal/entities"
	"github.com/mfarrell/lectern/internal/utils"
)

// DefaultTitle labels documents exported without an explicit title.
const DefaultTitle = "My Bible Bookmarks"

const (
	defaultFilenameStem = "bible-bookmarks"
	defaultMaxInFlight  = 8
)

// BookmarkSource provides the repository state an export reads.
type BookmarkSource interface {
	GetAllBookmarks() []entities.Bookmark
	GetAllCollections() []entities.Collection
}

// VerseFetcher resolves a single verse's text.
type VerseFetcher interface {
	FetchVerse(ctx context.Context, book string, chapter, verse int, translation string) (*bibleapi.Chapter, error)
}

// Engine produces export documents.
type Engine struct {
	source        BookmarkSource
	fetcher       VerseFetcher
	lookupTimeout time.Duration
	maxInFlight   int
}

// NewEngine creates an export engine with a bounded per-lookup timeout
// and a cap on concurrent lookups.
func NewEngine(source BookmarkSource, fetcher VerseFetcher) *Engine {
	return &Engine{
		source:        source,
		fetcher:       fetcher,
		lookupTimeout: bibleapi.DefaultTimeout,
		maxInFlight:   defaultMaxInFlight,
	}
}

// Result is a fully assembled export: the document, its serialized bytes
// and the filename the sink should use. LookupFailures counts bookmarks
// emitted without text.
type Result struct {
	Document       entities.ExportDocument
	Data           []byte
	Filename       string
	LookupFailures int
}

// Export builds the document for the current repository state. A failed
// verse lookup never aborts the export; the affected bookmark is emitted
// without text. The emitted order is the repository's insertion order
// regardless of lookup completion order.
func (e *Engine) Export(ctx context.Context, title string) (*Result, error) {
	bms, failures := e.enrich(ctx, e.source.GetAllBookmarks())

	docTitle := title
	if docTitle == "" {
		docTitle = DefaultTitle
	}

	now := time.Now().UTC()
	doc := entities.ExportDocument{
		Title:       docTitle,
		ExportedAt:  now.Format(time.RFC3339),
		Bookmarks:   bms,
		Collections: e.source.GetAllCollections(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize export document: %w", err)
	}

	stem := utils.Slugify(title)
	if stem == "" {
		stem = defaultFilenameStem
	}

	return &Result{
		Document:       doc,
		Data:           data,
		Filename:       fmt.Sprintf("%s-%s.json", stem, now.Format("2006-01-02")),
		LookupFailures: failures,
	}, nil
}

func (e *Engine) enrich(ctx context.Context, bms []entities.Bookmark) ([]entities.Bookmark, int) {
	enriched := make([]entities.Bookmark, len(bms))
	copy(enriched, bms)

	// A nil fetcher means an offline export: bookmarks are emitted as-is.
	if e.fetcher == nil {
		return enriched, 0
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures int
	)
	sem := make(chan struct{}, e.maxInFlight)

	for i := range enriched {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			text, err := e.resolveText(ctx, enriched[i])
			if err != nil {
				log.Printf("export: no text for %q: %v", enriched[i].Title, err)
				mu.Lock()
				failures++
				mu.Unlock()
				return
			}
			enriched[i].Text = text
		}(i)
	}
	wg.Wait()

	return enriched, failures
}

func (e *Engine) resolveText(ctx context.Context, bm entities.Bookmark) (string, error) {
	if len(bm.Verses) == 0 {
		return "", fmt.Errorf("bookmark has no verses")
	}
	chapter, err := strconv.Atoi(bm.Chapter)
	if err != nil {
		return "", fmt.Errorf("chapter %q is not a number", bm.Chapter)
	}
	verse, err := strconv.Atoi(bm.Verses[0])
	if err != nil {
		return "", fmt.Errorf("verse %q is not a number", bm.Verses[0])
	}

	ctx, cancel := context.WithTimeout(ctx, e.lookupTimeout)
	defer cancel()

	res, err := e.fetcher.FetchVerse(ctx, bm.Book, chapter, verse, bible.APICode(bible.Translation(bm.Version)))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Text), nil
}
