package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mfarrell/lectern/internal/bibleapi"
	"github.com/mfarrell/lectern/internal/bookmarks"
	"github.com/mfarrell/lectern/internal/config"
	"github.com/mfarrell/lectern/internal/export"
	"github.com/mfarrell/lectern/internal/storage"
)

// ExportCommand writes the current bookmark document to a file.
type ExportCommand struct {
	DatabasePath string
	OutputDir    string
	Title        string
	SkipLookup   bool
}

func NewExportCommand() *ExportCommand {
	return &ExportCommand{}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.StringVar(&cmd.OutputDir, "out", ".", "Directory to write the export file to")
	fs.StringVar(&cmd.Title, "title", "", "Document title (also names the file; defaults to 'bible-bookmarks')")
	fs.BoolVar(&cmd.SkipLookup, "no-text", false, "Skip verse text lookup (offline export)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export bookmarks and collections to a portable JSON document,\n")
		fmt.Fprintf(os.Stderr, "embedding verse text fetched from the text service.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s export -out ~/backups\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s export -title \"Morning readings\" -no-text\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *ExportCommand) Run() error {
	store, err := storage.NewSQLiteStore(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	repo := bookmarks.NewRepository(store)
	if err := repo.Load(); err != nil {
		return fmt.Errorf("failed to load bookmarks: %w", err)
	}

	var fetcher export.VerseFetcher = bibleapi.NewClient("", 0)
	if cmd.SkipLookup {
		fetcher = nil
	}
	engine := export.NewEngine(repo, fetcher)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := engine.Export(ctx, cmd.Title)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	outPath := filepath.Join(cmd.OutputDir, result.Filename)
	if err := os.WriteFile(outPath, result.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	fmt.Printf("Exported %d bookmarks and %d collections to %s\n",
		len(result.Document.Bookmarks), len(result.Document.Collections), outPath)
	if result.LookupFailures > 0 {
		fmt.Printf("Warning: %d bookmarks exported without verse text\n", result.LookupFailures)
	}
	return nil
}
