package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mfarrell/lectern/internal/bookmarks"
	"github.com/mfarrell/lectern/internal/config"
	"github.com/mfarrell/lectern/internal/importer"
	"github.com/mfarrell/lectern/internal/storage"
)

// ImportCommand merges a previously exported document into the database.
type ImportCommand struct {
	FilePath     string
	DatabasePath string
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the export document to import (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import bookmarks from an export document. Both the current object\n")
		fmt.Fprintf(os.Stderr, "shape and the legacy bare-array shape are accepted. Bookmarks whose\n")
		fmt.Fprintf(os.Stderr, "title already exists are skipped; collections merge by name.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	return nil
}

func (cmd *ImportCommand) Run() error {
	data, err := os.ReadFile(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.FilePath, err)
	}

	store, err := storage.NewSQLiteStore(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	repo := bookmarks.NewRepository(store)
	if err := repo.Load(); err != nil {
		return fmt.Errorf("failed to load bookmarks: %w", err)
	}

	result, err := importer.NewEngine(repo).Import(data)
	if err != nil {
		var ierr *importer.ImportError
		if errors.As(err, &ierr) {
			return fmt.Errorf("document rejected (%s)", ierr.Reason)
		}
		return err
	}

	fmt.Printf("Imported %d bookmarks and %d collections\n", result.BookmarksAdded, result.CollectionsAdded)
	if result.Duplicates > 0 {
		fmt.Printf("Skipped %d duplicates (matching title)\n", result.Duplicates)
	}
	if result.Discarded > 0 {
		fmt.Printf("Discarded %d invalid records\n", result.Discarded)
	}
	return nil
}
