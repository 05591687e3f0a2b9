package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Reloader re-reads repository state from durable storage.
type Reloader interface {
	Reload() error
}

// AdminController hosts maintenance endpoints.
type AdminController struct {
	reloader Reloader
}

func NewAdminController(reloader Reloader) *AdminController {
	return &AdminController{reloader: reloader}
}

// Reload discards the in-memory snapshot and re-reads storage. Meant for
// callers that changed the database out of band.
func (controller *AdminController) Reload(c *gin.Context) {
	if err := controller.reloader.Reload(); err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"status": "reloaded"})
}
