// Package store persists one credential record per user.
//
// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the requested record does not exist
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures
package store

import "errors"

// ErrNotFound is returned when a requested record is not found in the store.
// Services should check for this error using errors.Is(err, store.ErrNotFound).
var ErrNotFound = errors.New("not found")
