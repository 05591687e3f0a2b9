package entities

// Bookmark is a saved reference to one or more verses of a chapter,
// labelled by the user. Timestamps are stored as RFC 3339 strings so that
// exported documents stay readable by older releases.
type Bookmark struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Version   string   `json:"version"` // translation code, e.g. "KJV"
	Book      string   `json:"book"`
	Chapter   string   `json:"chapter"`
	Verses    []string `json:"verses"`
	CreatedAt string   `json:"createdAt"`
	// Text is only populated during export enrichment.
	Text string `json:"text,omitempty"`
	// Collection refers to a Collection id. Empty means uncategorized.
	Collection string `json:"collection,omitempty"`
}

// Collection is a user-defined named grouping of bookmarks.
type Collection struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

// ExportDocument is the portable document produced by an export and
// accepted (alongside the legacy bare-array shape) by an import.
type ExportDocument struct {
	Title       string       `json:"title"`
	ExportedAt  string       `json:"exportedAt"`
	Bookmarks   []Bookmark   `json:"bookmarks"`
	Collections []Collection `json:"collections"`
}
