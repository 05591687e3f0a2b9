package importer

// Failure reasons surfaced to the user.
const (
	ReasonMalformed = "malformed"
	ReasonEmpty     = "empty"
)

// ImportError indicates the import document could not be used at all:
// either it failed to parse or no valid bookmark records survived
// filtering. The store is left untouched.
type ImportError struct {
	Reason string
}

func (e *ImportError) Error() string {
	return "import failed: " + e.Reason
}
