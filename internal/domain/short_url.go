package domain

import "time"

// ShortURL связывает короткий код с исходным URL
type ShortURL struct {
	ID              string
	Shortcode       string
	OriginalURL     string
	CreatedAt       time.Time
	ExpiresAt       time.Time
	ValidityMinutes int
	Clicks          []Click
	IsActive        bool // reserved, not enforced on reads
}

// ClickCount is always the number of recorded clicks.
func (u *ShortURL) ClickCount() int {
	return len(u.Clicks)
}

// IsExpired reports whether now is strictly after the expiry instant.
func (u *ShortURL) IsExpired(now time.Time) bool {
	return now.After(u.ExpiresAt)
}

// Clone returns a deep copy so callers never share the clicks slice with storage.
func (u *ShortURL) Clone() *ShortURL {
	if u == nil {
		return nil
	}
	c := *u
	if u.Clicks != nil {
		c.Clicks = make([]Click, len(u.Clicks))
		copy(c.Clicks, u.Clicks)
	}
	return &c
}
