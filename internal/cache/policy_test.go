package cache

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_AllowList(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name     string
		method   string
		endpoint string
		userID   string
		wantOK   bool
		wantKey  string
		wantTTL  time.Duration
	}{
		{
			name:     "units endpoint is global with 4h TTL",
			method:   http.MethodGet,
			endpoint: "/foods/units.json",
			userID:   "u1",
			wantOK:   true,
			wantKey:  "global:/foods/units.json",
			wantTTL:  4 * time.Hour,
		},
		{
			name:     "frequent foods is per-user with 24h TTL",
			method:   http.MethodGet,
			endpoint: "/users/-/foods/log/frequent.json",
			userID:   "u1",
			wantOK:   true,
			wantKey:  "user:u1:/users/-/foods/log/frequent.json",
			wantTTL:  24 * time.Hour,
		},
		{
			name:     "food log by date embeds the date in the key",
			method:   http.MethodGet,
			endpoint: "/users/-/foods/log/date/2024-03-17.json",
			userID:   "u1",
			wantOK:   true,
			wantKey:  "user:u1:/users/-/foods/log/date/2024-03-17.json",
			wantTTL:  24 * time.Hour,
		},
		{
			name:     "POST is never cacheable even for listed endpoints",
			method:   http.MethodPost,
			endpoint: "/foods/units.json",
			userID:   "u1",
			wantOK:   false,
		},
		{
			name:     "DELETE is never cacheable",
			method:   http.MethodDelete,
			endpoint: "/users/-/foods/log/frequent.json",
			userID:   "u1",
			wantOK:   false,
		},
		{
			name:     "unlisted endpoint is not cacheable",
			method:   http.MethodGet,
			endpoint: "/users/-/foods/log/recent.json",
			userID:   "u1",
			wantOK:   false,
		},
		{
			name:     "malformed date does not match the by-date rule",
			method:   http.MethodGet,
			endpoint: "/users/-/foods/log/date/17-03-2024.json",
			userID:   "u1",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, ok := r.Resolve(tt.method, tt.endpoint, tt.userID)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantKey, policy.Key.String())
			assert.Equal(t, tt.wantTTL, policy.TTL)
		})
	}
}

func TestResolver_QueryStringInKeyNotInMatch(t *testing.T) {
	r := NewResolver()

	policy, ok := r.Resolve(http.MethodGet, "/foods/units.json?locale=en_GB", "u1")
	require.True(t, ok, "query string must not defeat rule matching")
	assert.Equal(t, "global:/foods/units.json?locale=en_GB", policy.Key.String())
}

func TestResolver_CustomRules(t *testing.T) {
	r := NewResolver(Rule{
		Name:  "recent_foods",
		Match: func(path string) bool { return path == "/users/-/foods/log/recent.json" },
		Scope: ScopePerUser,
		TTL:   time.Hour,
	})

	_, ok := r.Resolve(http.MethodGet, "/foods/units.json", "u1")
	assert.False(t, ok, "custom rule set replaces the defaults")

	policy, ok := r.Resolve(http.MethodGet, "/users/-/foods/log/recent.json", "u1")
	require.True(t, ok)
	assert.Equal(t, time.Hour, policy.TTL)
}

func TestKey_PerUserIsolation(t *testing.T) {
	a := PerUserKey("u1", "/users/-/foods/log/frequent.json")
	b := PerUserKey("u2", "/users/-/foods/log/frequent.json")

	assert.NotEqual(t, a.String(), b.String())
	assert.NotEqual(t, a, b)
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "global:/foods/units.json", GlobalKey("/foods/units.json").String())
	assert.Equal(t, "user:u1:/x.json", PerUserKey("u1", "/x.json").String())
	assert.True(t, Key{}.IsZero())
	assert.False(t, GlobalKey("/x").IsZero())
}
