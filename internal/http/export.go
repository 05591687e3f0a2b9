package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mfarrell/lectern/internal/export"
)

// Exporter assembles the downloadable bookmark document.
type Exporter interface {
	Export(ctx context.Context, title string) (*export.Result, error)
}

// ExportController serves the export document as a file download.
type ExportController struct {
	exporter Exporter
}

func NewExportController(exporter Exporter) *ExportController {
	return &ExportController{exporter: exporter}
}

// Download exports the current bookmarks and collections. The optional
// "title" query parameter names the document and its file. Per-bookmark
// lookup failures never fail the download; their count is reported in the
// X-Lookup-Failures header.
func (controller *ExportController) Download(c *gin.Context) {
	result, err := controller.exporter.Export(c.Request.Context(), c.Query("title"))
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if result.LookupFailures > 0 {
		log.Printf("export: %d of %d bookmarks exported without verse text",
			result.LookupFailures, len(result.Document.Bookmarks))
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("X-Lookup-Failures", strconv.Itoa(result.LookupFailures))
	c.Data(http.StatusOK, "application/json", result.Data)
}
