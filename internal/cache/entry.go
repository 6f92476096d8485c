package cache

import (
	"encoding/json"
	"net/http"
	"time"
)

// Entry is one stored upstream response. Entries are written only for 2xx
// responses to allow-listed GET endpoints and are overwritten in place on
// refetch. An entry past ExpiresAt is logically stale but is not proactively
// evicted; readers decide staleness.
type Entry struct {
	Key       Key             `json:"key"`
	Body      json.RawMessage `json:"body"`
	Status    int             `json:"status"`
	Header    http.Header     `json:"header"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Fresh reports whether the entry may still be served.
func (e Entry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}
