package http

import (
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the dependencies of every controller so the router
// can be assembled in one place, including from tests.
type RouterConfig struct {
	Bookmarks   BookmarkStore
	Collections CollectionStore
	Exporter    Exporter
	Importer    ImportService
	BibleClient VerseClient
	Reloader    Reloader
	Health      Pinger
	Version     string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Health, cfg.Version)
	bookmarksController := NewBookmarksController(cfg.Bookmarks)
	collectionsController := NewCollectionsController(cfg.Collections)
	exportController := NewExportController(cfg.Exporter)
	importController := NewImportController(cfg.Importer)
	bibleController := NewBibleController(cfg.BibleClient)
	adminController := NewAdminController(cfg.Reloader)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Bookmark endpoints
	router.GET("/api/bookmarks", bookmarksController.GetAllBookmarks)
	router.POST("/api/bookmarks", bookmarksController.CreateBookmark)
	router.GET("/api/bookmarks/export", exportController.Download)
	router.POST("/api/bookmarks/import", importController.Import)
	router.DELETE("/api/bookmarks/:id", bookmarksController.DeleteBookmark)

	// Collection endpoints
	router.GET("/api/collections", collectionsController.GetAllCollections)
	router.POST("/api/collections", collectionsController.CreateCollection)
	router.DELETE("/api/collections/:id", collectionsController.DeleteCollection)

	// Bible text endpoints
	router.GET("/api/bible/books", bibleController.GetCatalog)
	router.GET("/api/bible/:book/:chapter", bibleController.GetChapter)
	router.GET("/api/bible/:book/:chapter/:verse", bibleController.GetVerse)

	// Maintenance endpoints
	router.POST("/api/admin/reload", adminController.Reload)

	return router
}
