// Package store persists cached upstream responses keyed by cache.Key.
//
// The store is a dumb keyed record table: Get returns an entry even when its
// ExpiresAt has passed. Staleness is evaluated by the relay at read time, so
// all backends stay interchangeable and trivially testable.
package store

import "errors"

// ErrNotFound is returned when no entry exists for the requested key.
var ErrNotFound = errors.New("not found")
