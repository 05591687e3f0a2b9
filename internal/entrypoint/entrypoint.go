package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mfarrell/lectern/internal/bibleapi"
	"github.com/mfarrell/lectern/internal/bookmarks"
	"github.com/mfarrell/lectern/internal/config"
	"github.com/mfarrell/lectern/internal/export"
	http_controllers "github.com/mfarrell/lectern/internal/http"
	"github.com/mfarrell/lectern/internal/importer"
	"github.com/mfarrell/lectern/internal/scheduler"
	"github.com/mfarrell/lectern/internal/storage"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires storage, repository, engines and controllers, then serves.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Lectern v%s", version)

	store, err := storage.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}()

	repo := bookmarks.NewRepository(store)
	if err := repo.Load(); err != nil {
		log.Fatalf("Failed to load bookmarks: %v", err)
	}
	log.Printf("Loaded %d bookmarks and %d collections",
		len(repo.GetAllBookmarks()), len(repo.GetAllCollections()))

	client := bibleapi.NewClient(cfg.BibleAPI.BaseURL, time.Duration(cfg.BibleAPI.TimeoutInSeconds)*time.Second)
	exportEngine := export.NewEngine(repo, client)
	importEngine := importer.NewEngine(repo)

	var backup *scheduler.BackupScheduler
	if cfg.Backup.Enabled {
		backup = scheduler.NewBackupScheduler(exportEngine, cfg.Backup.Dir, cfg.Backup.Title, cfg.Backup.Schedule)
		if err := backup.Start(context.Background()); err != nil {
			log.Printf("Backup scheduler disabled: %v", err)
			backup = nil
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Bookmarks:   repo,
		Collections: repo,
		Exporter:    exportEngine,
		Importer:    importEngine,
		BibleClient: client,
		Reloader:    repo,
		Health:      store,
		Version:     version,
	})

	Serve(router, cfg, func(ctx context.Context) {
		if backup != nil {
			backup.Stop()
		}
	})
}
