package bibleapi

import "fmt"

// LookupError indicates a verse or chapter lookup failed: transport
// error, timeout, non-success status or an undecodable body.
type LookupError struct {
	Reference  string
	StatusCode int
	Err        error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lookup %s: %v", e.Reference, e.Err)
	}
	return fmt.Sprintf("lookup %s: HTTP %d", e.Reference, e.StatusCode)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
