package bookmarks

import "fmt"

// ValidationError indicates the caller supplied an incomplete or invalid
// bookmark or collection. The single operation is rejected; the store is
// never touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
