package cache

import (
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Policy is the caching decision for one request: where the response lives
// and how long it stays fresh.
type Policy struct {
	Key Key
	TTL time.Duration
}

// Rule is one allow-list entry. Match receives the endpoint path with any
// query string already stripped.
type Rule struct {
	Name  string
	Match func(path string) bool
	Scope Scope
	TTL   time.Duration
}

var foodLogByDate = regexp.MustCompile(`^/users/-/foods/log/date/\d{4}-\d{2}-\d{2}\.json$`)

// DefaultRules is the fixed allow-list of cacheable endpoints. Which further
// read endpoints deserve caching is a deployment decision; pass a custom rule
// set to NewResolver instead of editing this one.
func DefaultRules() []Rule {
	return []Rule{
		{
			// Units of measure: reference data with no user-specific content.
			Name:  "food_units",
			Match: func(path string) bool { return path == "/foods/units.json" },
			Scope: ScopeGlobal,
			TTL:   4 * time.Hour,
		},
		{
			Name:  "frequent_foods",
			Match: func(path string) bool { return path == "/users/-/foods/log/frequent.json" },
			Scope: ScopePerUser,
			TTL:   24 * time.Hour,
		},
		{
			// The date is part of the endpoint string, so each user gets one
			// entry per day.
			Name:  "food_log_by_date",
			Match: foodLogByDate.MatchString,
			Scope: ScopePerUser,
			TTL:   24 * time.Hour,
		},
	}
}

// Resolver decides whether a request is cacheable and under which key.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	rules []Rule
}

// NewResolver builds a resolver over the given allow-list. With no arguments
// it uses DefaultRules.
func NewResolver(rules ...Rule) *Resolver {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Resolver{rules: rules}
}

// Resolve returns the policy for the request, or ok=false when the response
// must not be cached. Only GET requests are ever cacheable; rules are checked
// in order and the first match wins. The cache key embeds the full endpoint
// including its query string, while rule matching sees only the path.
func (r *Resolver) Resolve(method, endpoint, userID string) (Policy, bool) {
	if method != http.MethodGet {
		return Policy{}, false
	}

	path := endpoint
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	for _, rule := range r.rules {
		if !rule.Match(path) {
			continue
		}
		policy := Policy{TTL: rule.TTL}
		if rule.Scope == ScopeGlobal {
			policy.Key = GlobalKey(endpoint)
		} else {
			policy.Key = PerUserKey(userID, endpoint)
		}
		return policy, true
	}
	return Policy{}, false
}
