package models

import "time"

// Record is the single durable credential row per user: the bearer pair issued
// by the upstream authorization server plus its absolute expiry.
//
// ExpiresAt is the only authority on staleness. The refresher never applies
// clock-skew heuristics beyond "now >= ExpiresAt".
type Record struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token must be refreshed before use.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
