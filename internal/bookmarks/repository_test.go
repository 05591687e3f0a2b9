package bookmarks

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfarrell/lectern/internal/entities"
	"github.com/mfarrell/lectern/internal/storage"
)

func newTestRepository(t *testing.T) (*Repository, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	repo := NewRepository(store)
	require.NoError(t, repo.Load())
	return repo, store
}

func validInput() BookmarkInput {
	return BookmarkInput{
		Title:   "God's Love",
		Version: "KJV",
		Book:    "John",
		Chapter: "3",
		Verses:  []string{"16"},
	}
}

func TestRepository_CreateBookmark(t *testing.T) {
	t.Run("generates id and createdAt", func(t *testing.T) {
		repo, _ := newTestRepository(t)

		bm, err := repo.CreateBookmark(validInput())
		require.NoError(t, err)

		assert.NotEmpty(t, bm.ID)
		assert.Equal(t, "God's Love", bm.Title)
		_, err = time.Parse(time.RFC3339, bm.CreatedAt)
		assert.NoError(t, err)
	})

	t.Run("ids are pairwise distinct", func(t *testing.T) {
		repo, _ := newTestRepository(t)

		seen := make(map[string]bool)
		for i := 0; i < 50; i++ {
			input := validInput()
			input.Title = fmt.Sprintf("Bookmark %d", i)
			bm, err := repo.CreateBookmark(input)
			require.NoError(t, err)
			assert.False(t, seen[bm.ID], "duplicate id %s", bm.ID)
			seen[bm.ID] = true
		}
	})

	t.Run("persists across a reload", func(t *testing.T) {
		repo, store := newTestRepository(t)

		_, err := repo.CreateBookmark(validInput())
		require.NoError(t, err)

		fresh := NewRepository(store)
		require.NoError(t, fresh.Load())
		bms := fresh.GetAllBookmarks()
		require.Len(t, bms, 1)
		assert.Equal(t, "God's Love", bms[0].Title)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*BookmarkInput)
		}{
			{"missing title", func(i *BookmarkInput) { i.Title = "" }},
			{"missing book", func(i *BookmarkInput) { i.Book = "" }},
			{"unknown book", func(i *BookmarkInput) { i.Book = "Hezekiah" }},
			{"missing chapter", func(i *BookmarkInput) { i.Chapter = "" }},
			{"non-numeric chapter", func(i *BookmarkInput) { i.Chapter = "three" }},
			{"chapter out of range", func(i *BookmarkInput) { i.Chapter = "22" }}, // John has 21
			{"no verses", func(i *BookmarkInput) { i.Verses = nil }},
			{"non-numeric verse", func(i *BookmarkInput) { i.Verses = []string{"sixteen"} }},
			{"unknown version", func(i *BookmarkInput) { i.Version = "NIV2084" }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo, _ := newTestRepository(t)
				input := validInput()
				tt.mutate(&input)

				_, err := repo.CreateBookmark(input)
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Empty(t, repo.GetAllBookmarks())
			})
		}
	})

	t.Run("preserves insertion order", func(t *testing.T) {
		repo, _ := newTestRepository(t)

		for _, title := range []string{"first", "second", "third"} {
			input := validInput()
			input.Title = title
			_, err := repo.CreateBookmark(input)
			require.NoError(t, err)
		}

		bms := repo.GetAllBookmarks()
		require.Len(t, bms, 3)
		assert.Equal(t, "first", bms[0].Title)
		assert.Equal(t, "second", bms[1].Title)
		assert.Equal(t, "third", bms[2].Title)
	})
}

func TestRepository_DeleteBookmark(t *testing.T) {
	t.Run("removes by id", func(t *testing.T) {
		repo, _ := newTestRepository(t)

		bm, err := repo.CreateBookmark(validInput())
		require.NoError(t, err)

		require.NoError(t, repo.DeleteBookmark(bm.ID))
		assert.Empty(t, repo.GetAllBookmarks())
	})

	t.Run("removal is idempotent", func(t *testing.T) {
		repo, _ := newTestRepository(t)

		bm, err := repo.CreateBookmark(validInput())
		require.NoError(t, err)
		other, err := repo.CreateBookmark(func() BookmarkInput {
			i := validInput()
			i.Title = "Kept"
			return i
		}())
		require.NoError(t, err)

		require.NoError(t, repo.DeleteBookmark(bm.ID))
		after := repo.GetAllBookmarks()

		require.NoError(t, repo.DeleteBookmark(bm.ID))
		assert.Equal(t, after, repo.GetAllBookmarks())
		assert.Equal(t, other.ID, repo.GetAllBookmarks()[0].ID)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		repo, _ := newTestRepository(t)
		require.NoError(t, repo.DeleteBookmark("nope"))
	})
}

func TestRepository_Collections(t *testing.T) {
	t.Run("create returns id for immediate assignment", func(t *testing.T) {
		repo, _ := newTestRepository(t)

		col, err := repo.CreateCollection("Favorites")
		require.NoError(t, err)
		require.NotEmpty(t, col.ID)

		input := validInput()
		input.Collection = col.ID
		bm, err := repo.CreateBookmark(input)
		require.NoError(t, err)

		bms := repo.GetAllBookmarks()
		require.Len(t, bms, 1)
		assert.Equal(t, col.ID, bms[0].Collection)
		assert.Equal(t, bm.ID, bms[0].ID)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		repo, _ := newTestRepository(t)
		_, err := repo.CreateCollection("")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("duplicate names are permitted", func(t *testing.T) {
		repo, _ := newTestRepository(t)
		_, err := repo.CreateCollection("Favorites")
		require.NoError(t, err)
		_, err = repo.CreateCollection("Favorites")
		require.NoError(t, err)
		assert.Len(t, repo.GetAllCollections(), 2)
	})

	t.Run("delete detaches bookmarks instead of cascading", func(t *testing.T) {
		repo, _ := newTestRepository(t)

		col, err := repo.CreateCollection("Favorites")
		require.NoError(t, err)
		input := validInput()
		input.Collection = col.ID
		_, err = repo.CreateBookmark(input)
		require.NoError(t, err)

		require.NoError(t, repo.DeleteCollection(col.ID))

		assert.Empty(t, repo.GetAllCollections())
		bms := repo.GetAllBookmarks()
		require.Len(t, bms, 1)
		assert.Empty(t, bms[0].Collection)
	})

	t.Run("detach survives a reload", func(t *testing.T) {
		repo, store := newTestRepository(t)

		col, err := repo.CreateCollection("Favorites")
		require.NoError(t, err)
		input := validInput()
		input.Collection = col.ID
		_, err = repo.CreateBookmark(input)
		require.NoError(t, err)
		require.NoError(t, repo.DeleteCollection(col.ID))

		fresh := NewRepository(store)
		require.NoError(t, fresh.Load())
		bms := fresh.GetAllBookmarks()
		require.Len(t, bms, 1)
		assert.Empty(t, bms[0].Collection)
	})

	t.Run("deleting unknown collection is a no-op", func(t *testing.T) {
		repo, _ := newTestRepository(t)
		require.NoError(t, repo.DeleteCollection("nope"))
	})
}

func TestRepository_PersistenceFailure(t *testing.T) {
	t.Run("create rolls back on write failure", func(t *testing.T) {
		repo, store := newTestRepository(t)

		store.WriteErr = errors.New("disk full")
		_, err := repo.CreateBookmark(validInput())

		var perr *storage.PersistenceError
		require.ErrorAs(t, err, &perr)
		assert.Empty(t, repo.GetAllBookmarks())

		store.WriteErr = nil
		_, err = repo.CreateBookmark(validInput())
		require.NoError(t, err)
		assert.Len(t, repo.GetAllBookmarks(), 1)
	})

	t.Run("delete collection rolls back on write failure", func(t *testing.T) {
		repo, store := newTestRepository(t)

		col, err := repo.CreateCollection("Favorites")
		require.NoError(t, err)

		store.WriteErr = errors.New("disk full")
		err = repo.DeleteCollection(col.ID)
		var perr *storage.PersistenceError
		require.ErrorAs(t, err, &perr)

		assert.Len(t, repo.GetAllCollections(), 1, "in-memory state must stay on last-good")
	})
}

func TestRepository_Load(t *testing.T) {
	t.Run("absent records mean empty collections", func(t *testing.T) {
		repo := NewRepository(storage.NewMemoryStore())
		require.NoError(t, repo.Load())
		assert.Empty(t, repo.GetAllBookmarks())
		assert.Empty(t, repo.GetAllCollections())
	})

	t.Run("corrupted record is an error", func(t *testing.T) {
		store := storage.NewMemoryStore()
		require.NoError(t, store.Write(bookmarksKey, "{not json"))

		repo := NewRepository(store)
		assert.Error(t, repo.Load())
	})

	t.Run("reload discards in-memory changes made stale", func(t *testing.T) {
		store := storage.NewMemoryStore()
		repo := NewRepository(store)
		require.NoError(t, repo.Load())

		_, err := repo.CreateBookmark(validInput())
		require.NoError(t, err)

		// Another writer replaced the record underneath us.
		require.NoError(t, store.Write(bookmarksKey, "[]"))
		require.NoError(t, repo.Reload())
		assert.Empty(t, repo.GetAllBookmarks())
	})
}

func TestRepository_MergeImport(t *testing.T) {
	t.Run("discards duplicate titles", func(t *testing.T) {
		repo, _ := newTestRepository(t)
		_, err := repo.CreateBookmark(validInput())
		require.NoError(t, err)

		res, err := repo.MergeImport(nil, []entities.Bookmark{
			{Title: "God's Love", Version: "KJV", Book: "John", Chapter: "3", Verses: []string{"16"}},
			{Title: "New One", Version: "KJV", Book: "Psalms", Chapter: "23", Verses: []string{"1"}},
		})
		require.NoError(t, err)

		assert.Equal(t, 1, res.BookmarksAdded)
		assert.Len(t, repo.GetAllBookmarks(), 2)
	})

	t.Run("never trusts incoming ids", func(t *testing.T) {
		repo, _ := newTestRepository(t)

		res, err := repo.MergeImport(
			[]entities.Collection{{ID: "evil-id", Name: "Psalms I Love"}},
			[]entities.Bookmark{{ID: "evil-id", Title: "Shepherd", Version: "KJV", Book: "Psalms", Chapter: "23", Verses: []string{"1"}}},
		)
		require.NoError(t, err)
		assert.Equal(t, 1, res.BookmarksAdded)
		assert.Equal(t, 1, res.CollectionsAdded)

		assert.NotEqual(t, "evil-id", repo.GetAllBookmarks()[0].ID)
		assert.NotEqual(t, "evil-id", repo.GetAllCollections()[0].ID)
	})

	t.Run("merges collections by exact name", func(t *testing.T) {
		repo, _ := newTestRepository(t)
		existing, err := repo.CreateCollection("Favorites")
		require.NoError(t, err)

		res, err := repo.MergeImport(
			[]entities.Collection{
				{ID: "src-1", Name: "Favorites"},
				{ID: "src-2", Name: "favorites"}, // different case, different collection
			},
			[]entities.Bookmark{{Title: "Shepherd", Version: "KJV", Book: "Psalms", Chapter: "23", Verses: []string{"1"}}},
		)
		require.NoError(t, err)

		assert.Equal(t, 1, res.CollectionsAdded)
		cols := repo.GetAllCollections()
		require.Len(t, cols, 2)
		assert.Equal(t, existing.ID, cols[0].ID)
		assert.Equal(t, "favorites", cols[1].Name)
	})

	t.Run("remaps bookmark references through collection names", func(t *testing.T) {
		repo, _ := newTestRepository(t)
		existing, err := repo.CreateCollection("Favorites")
		require.NoError(t, err)

		res, err := repo.MergeImport(
			[]entities.Collection{
				{ID: "src-fav", Name: "Favorites"},
				{ID: "src-new", Name: "Promises"},
			},
			[]entities.Bookmark{
				{Title: "A", Version: "KJV", Book: "John", Chapter: "3", Verses: []string{"16"}, Collection: "src-fav"},
				{Title: "B", Version: "KJV", Book: "Romans", Chapter: "8", Verses: []string{"28"}, Collection: "src-new"},
				{Title: "C", Version: "KJV", Book: "Psalms", Chapter: "23", Verses: []string{"1"}, Collection: "src-gone"},
			},
		)
		require.NoError(t, err)
		assert.Equal(t, 3, res.BookmarksAdded)

		cols := repo.GetAllCollections()
		require.Len(t, cols, 2)
		promises := cols[1]

		bms := repo.GetAllBookmarks()
		require.Len(t, bms, 3)
		assert.Equal(t, existing.ID, bms[0].Collection, "matched by name to the existing collection")
		assert.Equal(t, promises.ID, bms[1].Collection, "matched to the freshly created collection")
		assert.Empty(t, bms[2].Collection, "unresolvable reference is cleared")
	})

	t.Run("keeps incoming createdAt when present", func(t *testing.T) {
		repo, _ := newTestRepository(t)

		res, err := repo.MergeImport(nil, []entities.Bookmark{
			{Title: "Old", Version: "KJV", Book: "John", Chapter: "1", Verses: []string{"1"}, CreatedAt: "2020-01-01T00:00:00Z"},
			{Title: "New", Version: "KJV", Book: "John", Chapter: "1", Verses: []string{"2"}},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, res.BookmarksAdded)

		bms := repo.GetAllBookmarks()
		assert.Equal(t, "2020-01-01T00:00:00Z", bms[0].CreatedAt)
		assert.NotEmpty(t, bms[1].CreatedAt)
	})

	t.Run("nothing new is not an error and writes nothing", func(t *testing.T) {
		repo, store := newTestRepository(t)
		_, err := repo.CreateBookmark(validInput())
		require.NoError(t, err)

		store.WriteErr = errors.New("disk full")
		res, err := repo.MergeImport(nil, []entities.Bookmark{
			{Title: "God's Love", Version: "KJV", Book: "John", Chapter: "3", Verses: []string{"16"}},
		})
		require.NoError(t, err)
		assert.Zero(t, res.BookmarksAdded)
	})

	t.Run("rolls back on write failure", func(t *testing.T) {
		repo, store := newTestRepository(t)

		store.WriteErr = errors.New("disk full")
		_, err := repo.MergeImport(
			[]entities.Collection{{ID: "c", Name: "Promises"}},
			[]entities.Bookmark{{Title: "B", Version: "KJV", Book: "Romans", Chapter: "8", Verses: []string{"28"}}},
		)
		var perr *storage.PersistenceError
		require.ErrorAs(t, err, &perr)
		assert.Empty(t, repo.GetAllBookmarks())
		assert.Empty(t, repo.GetAllCollections())
	})
}
