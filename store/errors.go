package store

import "errors"

var (
	// ErrNotFound is returned when no catalog matches the request.
	ErrNotFound = errors.New("catalog not found")
	// ErrNotConfigured is returned by methods on a closed or nil store.
	ErrNotConfigured = errors.New("store is not configured")
)
