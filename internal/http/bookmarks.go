package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mfarrell/lectern/internal/bookmarks"
	"github.com/mfarrell/lectern/internal/entities"
)

// BookmarkStore provides the repository operations the bookmarks
// controller needs.
type BookmarkStore interface {
	GetAllBookmarks() []entities.Bookmark
	CreateBookmark(input bookmarks.BookmarkInput) (*entities.Bookmark, error)
	DeleteBookmark(id string) error
}

// BookmarksController handles bookmark CRUD endpoints.
type BookmarksController struct {
	store BookmarkStore
}

func NewBookmarksController(store BookmarkStore) *BookmarksController {
	return &BookmarksController{store: store}
}

// GetAllBookmarks returns every bookmark in insertion order.
func (controller *BookmarksController) GetAllBookmarks(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, controller.store.GetAllBookmarks())
}

// CreateBookmark creates a bookmark from the request body.
func (controller *BookmarksController) CreateBookmark(c *gin.Context) {
	var input bookmarks.BookmarkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bm, err := controller.store.CreateBookmark(input)
	if err != nil {
		var verr *bookmarks.ValidationError
		if errors.As(err, &verr) {
			c.IndentedJSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.IndentedJSON(http.StatusCreated, bm)
}

// DeleteBookmark removes a bookmark. Unknown ids succeed silently.
func (controller *BookmarksController) DeleteBookmark(c *gin.Context) {
	if err := controller.store.DeleteBookmark(c.Param("id")); err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
