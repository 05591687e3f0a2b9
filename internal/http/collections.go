package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mfarrell/lectern/internal/bookmarks"
	"github.com/mfarrell/lectern/internal/entities"
)

// CollectionStore provides the repository operations the collections
// controller needs.
type CollectionStore interface {
	GetAllCollections() []entities.Collection
	CreateCollection(name string) (*entities.Collection, error)
	DeleteCollection(id string) error
}

// CollectionsController handles collection CRUD endpoints.
type CollectionsController struct {
	store CollectionStore
}

func NewCollectionsController(store CollectionStore) *CollectionsController {
	return &CollectionsController{store: store}
}

func (controller *CollectionsController) GetAllCollections(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, controller.store.GetAllCollections())
}

type createCollectionRequest struct {
	Name string `json:"name"`
}

func (controller *CollectionsController) CreateCollection(c *gin.Context) {
	var req createCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	col, err := controller.store.CreateCollection(req.Name)
	if err != nil {
		var verr *bookmarks.ValidationError
		if errors.As(err, &verr) {
			c.IndentedJSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.IndentedJSON(http.StatusCreated, col)
}

// DeleteCollection removes a collection; bookmarks referencing it are
// detached, not deleted. Unknown ids succeed silently.
func (controller *CollectionsController) DeleteCollection(c *gin.Context) {
	if err := controller.store.DeleteCollection(c.Param("id")); err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
