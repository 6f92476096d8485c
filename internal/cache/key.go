// Package cache defines the response cache's domain model: typed cache keys,
// stored entries, the endpoint allow-list policy, and header sanitization.
package cache

import "fmt"

// Scope states whether an entry is shared across all users or private to one.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopePerUser Scope = "user"
)

// Key identifies a cached response. It is a typed value rather than an ad hoc
// string concatenation: a per-user key always carries its owner, so two users
// can never resolve to the same stored entry.
type Key struct {
	Scope    Scope  `json:"scope"`
	UserID   string `json:"user_id,omitempty"`
	Endpoint string `json:"endpoint"`
}

// GlobalKey builds a key for an entry shared by all users.
func GlobalKey(endpoint string) Key {
	return Key{Scope: ScopeGlobal, Endpoint: endpoint}
}

// PerUserKey builds a key owned by a single user.
func PerUserKey(userID, endpoint string) Key {
	return Key{Scope: ScopePerUser, UserID: userID, Endpoint: endpoint}
}

// String renders the storage form: "global:<endpoint>" or "user:<id>:<endpoint>".
func (k Key) String() string {
	if k.Scope == ScopePerUser {
		return fmt.Sprintf("%s:%s:%s", ScopePerUser, k.UserID, k.Endpoint)
	}
	return fmt.Sprintf("%s:%s", ScopeGlobal, k.Endpoint)
}

// IsZero reports whether the key is unset.
func (k Key) IsZero() bool {
	return k.Scope == "" && k.Endpoint == ""
}
