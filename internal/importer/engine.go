// Package importer parses portable bookmark documents and merges them
// into the repository. Two shapes are accepted for backward
// compatibility: the legacy bare array of bookmarks, and the current
// object with bookmarks plus optional collections. The shape is detected
// structurally once, not duck-typed per field.
package importer

import (
	"bytes"
	"encoding/json"

	"github.com/mfarrell/lectern/internal/bookmarks"
	"github.com/mfarrell/lectern/internal/entities"
)

// Merger applies a parsed import batch as one logical repository update.
type Merger interface {
	MergeImport(collections []entities.Collection, bms []entities.Bookmark) (bookmarks.MergeResult, error)
}

// Engine parses, validates and merges import documents.
type Engine struct {
	repo Merger
}

func NewEngine(repo Merger) *Engine {
	return &Engine{repo: repo}
}

// Result reports what an import added and how many records were dropped:
// Discarded counts records that failed field validation, Duplicates the
// valid candidates skipped because their title already existed.
type Result struct {
	BookmarksAdded   int `json:"bookmarks_added"`
	CollectionsAdded int `json:"collections_added"`
	Discarded        int `json:"discarded"`
	Duplicates       int `json:"duplicates"`
}

// Import parses fileContents and merges the result into the repository.
// It fails with ImportError("malformed") when the document cannot be
// parsed and ImportError("empty") when no valid bookmark survives
// filtering; in both cases the store is untouched.
func (e *Engine) Import(fileContents []byte) (*Result, error) {
	doc, err := decodeDocument(fileContents)
	if err != nil {
		return nil, err
	}

	candidates := make([]entities.Bookmark, 0, len(doc.bookmarks))
	for _, b := range doc.bookmarks {
		if isCandidate(b) {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return nil, &ImportError{Reason: ReasonEmpty}
	}

	merged, err := e.repo.MergeImport(doc.collections, candidates)
	if err != nil {
		return nil, err
	}

	return &Result{
		BookmarksAdded:   merged.BookmarksAdded,
		CollectionsAdded: merged.CollectionsAdded,
		Discarded:        len(doc.bookmarks) - len(candidates),
		Duplicates:       len(candidates) - merged.BookmarksAdded,
	}, nil
}

// isCandidate keeps only records with the fields a bookmark cannot live
// without. Everything else is dropped silently; a partially bad document
// is not an error.
func isCandidate(b entities.Bookmark) bool {
	return b.Title != "" &&
		b.Version != "" &&
		b.Book != "" &&
		b.Chapter != "" &&
		len(b.Verses) > 0
}

// document is the tagged union behind the two accepted shapes.
type document struct {
	bookmarks   []entities.Bookmark
	collections []entities.Collection
}

func decodeDocument(data []byte) (*document, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, &ImportError{Reason: ReasonMalformed}
	}

	switch trimmed[0] {
	case '[':
		// Legacy shape: bare bookmark array, no collections.
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, &ImportError{Reason: ReasonMalformed}
		}
		return &document{bookmarks: decodeBookmarks(raw)}, nil

	case '{':
		var current struct {
			Bookmarks   []json.RawMessage `json:"bookmarks"`
			Collections []json.RawMessage `json:"collections"`
		}
		if err := json.Unmarshal(trimmed, &current); err != nil {
			return nil, &ImportError{Reason: ReasonMalformed}
		}
		return &document{
			bookmarks:   decodeBookmarks(current.Bookmarks),
			collections: decodeCollections(current.Collections),
		}, nil

	default:
		return nil, &ImportError{Reason: ReasonMalformed}
	}
}

// Records are decoded one by one so a single mangled record is discarded
// instead of failing the whole document.
func decodeBookmarks(raw []json.RawMessage) []entities.Bookmark {
	out := make([]entities.Bookmark, 0, len(raw))
	for _, r := range raw {
		var b entities.Bookmark
		if err := json.Unmarshal(r, &b); err != nil {
			continue
		}
		out = append(out, b)
	}
	return out
}

func decodeCollections(raw []json.RawMessage) []entities.Collection {
	out := make([]entities.Collection, 0, len(raw))
	for _, r := range raw {
		var c entities.Collection
		if err := json.Unmarshal(r, &c); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}
