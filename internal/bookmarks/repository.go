// Package bookmarks owns the authoritative in-memory copy of bookmarks and
// collections. Every mutation serializes the candidate state, writes it to
// durable storage and only then publishes it in memory, so a failed write
// leaves readers on last-good state.
package bookmarks

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mfarrell/lectern/internal/bible"
	"github.com/mfarrell/lectern/internal/entities"
	"github.com/mfarrell/lectern/internal/storage"
)

// Record keys are unchanged from earlier releases so existing databases
// keep working.
const (
	bookmarksKey   = "bible-bookmarks"
	collectionsKey = "bible-collections"
)

// BookmarkInput carries the caller-supplied fields of a new bookmark.
// ID and CreatedAt are generated by the repository.
type BookmarkInput struct {
	Title      string   `json:"title"`
	Version    string   `json:"version"`
	Book       string   `json:"book"`
	Chapter    string   `json:"chapter"`
	Verses     []string `json:"verses"`
	Collection string   `json:"collection,omitempty"`
}

// MergeResult reports what an import merge actually added.
type MergeResult struct {
	BookmarksAdded   int
	CollectionsAdded int
}

// Repository mediates all bookmark and collection state.
type Repository struct {
	store storage.Store

	mu          sync.RWMutex
	bookmarks   []entities.Bookmark
	collections []entities.Collection

	now   func() time.Time
	newID func() string
}

// NewRepository creates a repository backed by the given store. Call Load
// before serving reads.
func NewRepository(store storage.Store) *Repository {
	return &Repository{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Load hydrates in-memory state from storage. Absent records mean empty
// collections; a record that fails to decode is an error, since guessing
// at corrupted state could destroy it on the next write.
func (r *Repository) Load() error {
	bms, err := loadRecord[entities.Bookmark](r.store, bookmarksKey)
	if err != nil {
		return err
	}
	cols, err := loadRecord[entities.Collection](r.store, collectionsKey)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookmarks = bms
	r.collections = cols
	return nil
}

// Reload re-reads storage, discarding the in-memory snapshot. Exposed for
// callers that know the database changed underneath them.
func (r *Repository) Reload() error {
	return r.Load()
}

func loadRecord[T any](store storage.Store, key string) ([]T, error) {
	value, ok, err := store.Read(key)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	if !ok || value == "" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil, fmt.Errorf("decode %q: %w", key, err)
	}
	return items, nil
}

// GetAllBookmarks returns the bookmarks in insertion order.
func (r *Repository) GetAllBookmarks() []entities.Bookmark {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.Bookmark, len(r.bookmarks))
	copy(out, r.bookmarks)
	return out
}

// GetAllCollections returns the collections in insertion order.
func (r *Repository) GetAllCollections() []entities.Collection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.Collection, len(r.collections))
	copy(out, r.collections)
	return out
}

// CreateBookmark validates the input, generates id and createdAt, persists
// and returns the new record.
func (r *Repository) CreateBookmark(input BookmarkInput) (*entities.Bookmark, error) {
	if err := validateBookmarkInput(input); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bm := entities.Bookmark{
		ID:         r.newID(),
		Title:      input.Title,
		Version:    input.Version,
		Book:       input.Book,
		Chapter:    input.Chapter,
		Verses:     input.Verses,
		CreatedAt:  r.timestamp(),
		Collection: input.Collection,
	}

	next := make([]entities.Bookmark, len(r.bookmarks), len(r.bookmarks)+1)
	copy(next, r.bookmarks)
	next = append(next, bm)

	if err := r.persist(bookmarksKey, next); err != nil {
		return nil, err
	}
	r.bookmarks = next
	return &bm, nil
}

// DeleteBookmark removes a bookmark by id. Deleting an unknown id is a
// no-op, not an error.
func (r *Repository) DeleteBookmark(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]entities.Bookmark, 0, len(r.bookmarks))
	for _, b := range r.bookmarks {
		if b.ID != id {
			next = append(next, b)
		}
	}
	if len(next) == len(r.bookmarks) {
		return nil
	}

	if err := r.persist(bookmarksKey, next); err != nil {
		return err
	}
	r.bookmarks = next
	return nil
}

// CreateCollection creates a named collection. Duplicate names are
// permitted; only import merges deduplicate by name.
func (r *Repository) CreateCollection(name string) (*entities.Collection, error) {
	if name == "" {
		return nil, &ValidationError{Field: "collection", Reason: "name is required"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	col := entities.Collection{
		ID:        r.newID(),
		Name:      name,
		CreatedAt: r.timestamp(),
	}

	next := make([]entities.Collection, len(r.collections), len(r.collections)+1)
	copy(next, r.collections)
	next = append(next, col)

	if err := r.persist(collectionsKey, next); err != nil {
		return nil, err
	}
	r.collections = next
	return &col, nil
}

// DeleteCollection removes a collection and detaches (never deletes) the
// bookmarks referencing it, as one logical update. Deleting an unknown id
// is a no-op.
func (r *Repository) DeleteCollection(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	nextCols := make([]entities.Collection, 0, len(r.collections))
	for _, c := range r.collections {
		if c.ID != id {
			nextCols = append(nextCols, c)
		}
	}
	if len(nextCols) == len(r.collections) {
		return nil
	}

	detached := false
	nextBms := make([]entities.Bookmark, len(r.bookmarks))
	copy(nextBms, r.bookmarks)
	for i := range nextBms {
		if nextBms[i].Collection == id {
			nextBms[i].Collection = ""
			detached = true
		}
	}

	prevCols, _ := json.Marshal(r.collections)
	if err := r.persist(collectionsKey, nextCols); err != nil {
		return err
	}
	if detached {
		if err := r.persist(bookmarksKey, nextBms); err != nil {
			// Put the collections record back so the two records stay
			// coherent with the unchanged in-memory state.
			if restoreErr := r.store.Write(collectionsKey, string(prevCols)); restoreErr != nil {
				log.Printf("failed to restore collections record after write failure: %v", restoreErr)
			}
			return err
		}
	}

	r.collections = nextCols
	if detached {
		r.bookmarks = nextBms
	}
	return nil
}

// MergeImport applies an already-parsed import batch as one logical
// update. Incoming ids are never trusted: collections merge by exact name
// with fresh ids, bookmarks whose title matches an existing bookmark are
// discarded, and bookmark collection references are remapped through the
// incoming collection's name to the local collection of that name (or
// cleared when unresolvable).
func (r *Repository) MergeImport(collections []entities.Collection, bms []entities.Bookmark) (MergeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res MergeResult

	nameToID := make(map[string]string, len(r.collections))
	for _, c := range r.collections {
		if _, ok := nameToID[c.Name]; !ok {
			nameToID[c.Name] = c.ID
		}
	}

	nextCols := make([]entities.Collection, len(r.collections), len(r.collections)+len(collections))
	copy(nextCols, r.collections)

	// incoming collection id -> local collection id
	remap := make(map[string]string, len(collections))
	for _, c := range collections {
		if c.Name == "" {
			continue
		}
		localID, exists := nameToID[c.Name]
		if !exists {
			created := entities.Collection{
				ID:        r.newID(),
				Name:      c.Name,
				CreatedAt: c.CreatedAt,
			}
			if created.CreatedAt == "" {
				created.CreatedAt = r.timestamp()
			}
			nextCols = append(nextCols, created)
			nameToID[c.Name] = created.ID
			localID = created.ID
			res.CollectionsAdded++
		}
		if c.ID != "" {
			remap[c.ID] = localID
		}
	}

	existingTitles := make(map[string]struct{}, len(r.bookmarks))
	for _, b := range r.bookmarks {
		existingTitles[b.Title] = struct{}{}
	}

	nextBms := make([]entities.Bookmark, len(r.bookmarks), len(r.bookmarks)+len(bms))
	copy(nextBms, r.bookmarks)
	for _, b := range bms {
		if _, dup := existingTitles[b.Title]; dup {
			continue
		}
		nb := b
		nb.ID = r.newID()
		if nb.CreatedAt == "" {
			nb.CreatedAt = r.timestamp()
		}
		if nb.Collection != "" {
			if localID, ok := remap[nb.Collection]; ok {
				nb.Collection = localID
			} else {
				nb.Collection = ""
			}
		}
		nextBms = append(nextBms, nb)
		res.BookmarksAdded++
	}

	if res.BookmarksAdded == 0 && res.CollectionsAdded == 0 {
		return res, nil
	}

	// Collections first: the merged bookmarks reference their ids.
	prevCols, _ := json.Marshal(r.collections)
	if res.CollectionsAdded > 0 {
		if err := r.persist(collectionsKey, nextCols); err != nil {
			return MergeResult{}, err
		}
	}
	if res.BookmarksAdded > 0 {
		if err := r.persist(bookmarksKey, nextBms); err != nil {
			if res.CollectionsAdded > 0 {
				if restoreErr := r.store.Write(collectionsKey, string(prevCols)); restoreErr != nil {
					log.Printf("failed to restore collections record after write failure: %v", restoreErr)
				}
			}
			return MergeResult{}, err
		}
	}

	r.collections = nextCols
	r.bookmarks = nextBms
	return res, nil
}

func (r *Repository) timestamp() string {
	return r.now().UTC().Format(time.RFC3339)
}

// persist serializes items and writes them under key. Any failure is
// surfaced as a PersistenceError; the caller must not publish the
// candidate state.
func (r *Repository) persist(key string, items any) error {
	data, err := json.Marshal(items)
	if err != nil {
		return &storage.PersistenceError{Key: key, Err: err}
	}
	if err := r.store.Write(key, string(data)); err != nil {
		return &storage.PersistenceError{Key: key, Err: err}
	}
	return nil
}

func validateBookmarkInput(input BookmarkInput) error {
	if input.Title == "" {
		return &ValidationError{Field: "bookmark", Reason: "title is required"}
	}
	if input.Book == "" {
		return &ValidationError{Field: "bookmark", Reason: "book is required"}
	}
	if !bible.IsCanonicalBook(input.Book) {
		return &ValidationError{Field: "bookmark", Reason: fmt.Sprintf("unknown book %q", input.Book)}
	}
	if input.Chapter == "" {
		return &ValidationError{Field: "bookmark", Reason: "chapter is required"}
	}
	chapter, err := strconv.Atoi(input.Chapter)
	if err != nil || chapter < 1 {
		return &ValidationError{Field: "bookmark", Reason: fmt.Sprintf("chapter %q is not a positive number", input.Chapter)}
	}
	if maxChapter, _ := bible.ChapterCount(input.Book); chapter > maxChapter {
		return &ValidationError{Field: "bookmark", Reason: fmt.Sprintf("%s has only %d chapters", input.Book, maxChapter)}
	}
	if len(input.Verses) == 0 {
		return &ValidationError{Field: "bookmark", Reason: "at least one verse is required"}
	}
	for _, v := range input.Verses {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return &ValidationError{Field: "bookmark", Reason: fmt.Sprintf("verse %q is not a positive number", v)}
		}
	}
	if input.Version != "" && !bible.IsSupportedTranslation(input.Version) {
		return &ValidationError{Field: "bookmark", Reason: fmt.Sprintf("unknown version %q", input.Version)}
	}
	return nil
}
