package models

import "time"

// Session is the admin authentication state carried in the session cookie
type Session struct {
	Version       int       `json:"v"`
	Authenticated bool      `json:"authenticated"`
	CreatedAt     time.Time `json:"created_at"`
	LastActivity  time.Time `json:"last_activity"`
}

// RateLimitEntry is the fixed-window counter of one client identifier
type RateLimitEntry struct {
	Count     int       `json:"count"`
	ResetTime time.Time `json:"reset_time"`
}

// Expired reports whether the window is over at now. A window whose reset time
// equals now counts as expired.
func (e RateLimitEntry) Expired(now time.Time) bool {
	return !now.Before(e.ResetTime)
}
