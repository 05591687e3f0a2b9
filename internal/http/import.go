package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mfarrell/lectern/internal/importer"
)

// ImportService merges a portable bookmark document into the store.
type ImportService interface {
	Import(fileContents []byte) (*importer.Result, error)
}

// ImportController accepts uploaded export documents.
type ImportController struct {
	importer ImportService
}

func NewImportController(service ImportService) *ImportController {
	return &ImportController{importer: service}
}

// Import reads the document either from a multipart "file" field or from
// the raw request body, then merges it. Unusable documents get a 400 with
// the failure reason; the store is left untouched.
func (controller *ImportController) Import(c *gin.Context) {
	data, err := readDocument(c)
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := controller.importer.Import(data)
	if err != nil {
		var ierr *importer.ImportError
		if errors.As(err, &ierr) {
			c.IndentedJSON(http.StatusBadRequest, gin.H{"error": ierr.Error(), "reason": ierr.Reason})
			return
		}
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.IndentedJSON(http.StatusOK, result)
}

func readDocument(c *gin.Context) ([]byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return nil, err
		}
		file, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(c.Request.Body)
}
