package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mfarrell/lectern/internal/bible"
	"github.com/mfarrell/lectern/internal/bibleapi"
)

// VerseClient is the remote text-service boundary.
type VerseClient interface {
	FetchChapter(ctx context.Context, book string, chapter int, translation string) (*bibleapi.Chapter, error)
	FetchVerse(ctx context.Context, book string, chapter, verse int, translation string) (*bibleapi.Chapter, error)
}

// BibleController serves the static catalog and proxies chapter/verse
// text lookups.
type BibleController struct {
	client VerseClient
}

func NewBibleController(client VerseClient) *BibleController {
	return &BibleController{client: client}
}

type catalogBook struct {
	Name     string `json:"name"`
	Chapters int    `json:"chapters"`
}

type catalogResponse struct {
	Books        []catalogBook       `json:"books"`
	Translations []bible.Translation `json:"translations"`
}

// GetCatalog lists the canonical books with chapter counts and the
// supported translations.
func (controller *BibleController) GetCatalog(c *gin.Context) {
	books := make([]catalogBook, 0, len(bible.Books))
	for _, name := range bible.Books {
		chapters, _ := bible.ChapterCount(name)
		books = append(books, catalogBook{Name: name, Chapters: chapters})
	}
	c.IndentedJSON(http.StatusOK, catalogResponse{
		Books:        books,
		Translations: bible.Translations,
	})
}

// GetChapter returns the text of one chapter.
func (controller *BibleController) GetChapter(c *gin.Context) {
	book, chapter, ok := controller.chapterParams(c)
	if !ok {
		return
	}

	result, err := controller.client.FetchChapter(c.Request.Context(), book, chapter, translationParam(c))
	if err != nil {
		respondLookupError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, result)
}

// GetVerse returns the text of a single verse.
func (controller *BibleController) GetVerse(c *gin.Context) {
	book, chapter, ok := controller.chapterParams(c)
	if !ok {
		return
	}
	verse, err := strconv.Atoi(c.Param("verse"))
	if err != nil || verse < 1 {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid verse %q", c.Param("verse"))})
		return
	}

	result, err := controller.client.FetchVerse(c.Request.Context(), book, chapter, verse, translationParam(c))
	if err != nil {
		respondLookupError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, result)
}

func (controller *BibleController) chapterParams(c *gin.Context) (string, int, bool) {
	book := c.Param("book")
	if !bible.IsCanonicalBook(book) {
		c.IndentedJSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown book %q", book)})
		return "", 0, false
	}
	chapter, err := strconv.Atoi(c.Param("chapter"))
	if err != nil || chapter < 1 {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid chapter %q", c.Param("chapter"))})
		return "", 0, false
	}
	if maxChapter, _ := bible.ChapterCount(book); chapter > maxChapter {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s has only %d chapters", book, maxChapter)})
		return "", 0, false
	}
	return book, chapter, true
}

// The translation query parameter carries the app's version code (e.g.
// "KJV"); unknown values fall back to the service's default edition.
func translationParam(c *gin.Context) string {
	return bible.APICode(bible.Translation(c.DefaultQuery("translation", string(bible.TranslationKJV))))
}

func respondLookupError(c *gin.Context, err error) {
	var lerr *bibleapi.LookupError
	if errors.As(err, &lerr) {
		c.IndentedJSON(http.StatusBadGateway, gin.H{"error": lerr.Error()})
		return
	}
	c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
