// Package storage provides the durable key-value port behind the bookmark
// repository. Values are whole serialized collections keyed by well-known
// names; an absent key means an empty collection, not an error.
package storage

import "fmt"

// Store is the durable storage port. Implementations must treat a missing
// key as (value="", ok=false, err=nil).
type Store interface {
	Read(key string) (value string, ok bool, err error)
	Write(key, value string) error
}

// PersistenceError indicates a durable write (or the serialization leading
// up to it) failed. The triggering in-memory mutation is rolled back by
// the caller; the process keeps running with last-good state.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %q: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
