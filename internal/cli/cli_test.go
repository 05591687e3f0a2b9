package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfarrell/lectern/internal/bookmarks"
	"github.com/mfarrell/lectern/internal/storage"
)

func TestExportCommand_ParseFlags(t *testing.T) {
	cmd := NewExportCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-db", "/tmp/x.db", "-out", "/tmp", "-title", "Morning readings", "-no-text"}))

	assert.Equal(t, "/tmp/x.db", cmd.DatabasePath)
	assert.Equal(t, "/tmp", cmd.OutputDir)
	assert.Equal(t, "Morning readings", cmd.Title)
	assert.True(t, cmd.SkipLookup)
}

func TestImportCommand_ParseFlags(t *testing.T) {
	t.Run("requires file", func(t *testing.T) {
		cmd := NewImportCommand()
		assert.Error(t, cmd.ParseFlags(nil))
	})

	t.Run("accepts file and db", func(t *testing.T) {
		cmd := NewImportCommand()
		require.NoError(t, cmd.ParseFlags([]string{"-file", "/tmp/doc.json", "-db", "/tmp/x.db"}))
		assert.Equal(t, "/tmp/doc.json", cmd.FilePath)
		assert.Equal(t, "/tmp/x.db", cmd.DatabasePath)
	})
}

func TestExportImportCommands_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	sourceDB := filepath.Join(dir, "source.db")
	targetDB := filepath.Join(dir, "target.db")

	seed := func(path string) {
		store, err := storage.NewSQLiteStore(path)
		require.NoError(t, err)
		defer store.Close()
		repo := bookmarks.NewRepository(store)
		require.NoError(t, repo.Load())
		_, err = repo.CreateBookmark(bookmarks.BookmarkInput{
			Title: "God's Love", Version: "KJV", Book: "John", Chapter: "3", Verses: []string{"16"},
		})
		require.NoError(t, err)
	}
	seed(sourceDB)

	exportCmd := NewExportCommand()
	require.NoError(t, exportCmd.ParseFlags([]string{"-db", sourceDB, "-out", dir, "-no-text"}))
	require.NoError(t, exportCmd.Run())

	matches, err := filepath.Glob(filepath.Join(dir, "bible-bookmarks-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	importCmd := NewImportCommand()
	require.NoError(t, importCmd.ParseFlags([]string{"-file", matches[0], "-db", targetDB}))
	require.NoError(t, importCmd.Run())

	store, err := storage.NewSQLiteStore(targetDB)
	require.NoError(t, err)
	defer store.Close()
	repo := bookmarks.NewRepository(store)
	require.NoError(t, repo.Load())

	bms := repo.GetAllBookmarks()
	require.Len(t, bms, 1)
	assert.Equal(t, "God's Love", bms[0].Title)
}
