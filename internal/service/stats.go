package service

import (
	"shortlink-backend/internal/domain"
	"time"
)

// Stats is the public view of a short URL and its visits.
type Stats struct {
	Shortcode       string
	OriginalURL     string
	CreatedAt       time.Time
	ExpiresAt       time.Time
	ValidityMinutes int
	IsExpired       bool
	ClickCount      int
	Clicks          []ClickStats
}

// ClickStats omits the source IP, user agent and coordinates of a click.
type ClickStats struct {
	Timestamp time.Time
	Referrer  string
	Country   string
	Region    string
	City      string
	Device    domain.Device
}

func newStats(url *domain.ShortURL, now time.Time) *Stats {
	clicks := make([]ClickStats, 0, len(url.Clicks))
	for _, c := range url.Clicks {
		clicks = append(clicks, ClickStats{
			Timestamp: c.Timestamp,
			Referrer:  c.Referrer,
			Country:   c.Geolocation.Country,
			Region:    c.Geolocation.Region,
			City:      c.Geolocation.City,
			Device:    c.Device,
		})
	}

	return &Stats{
		Shortcode:       url.Shortcode,
		OriginalURL:     url.OriginalURL,
		CreatedAt:       url.CreatedAt,
		ExpiresAt:       url.ExpiresAt,
		ValidityMinutes: url.ValidityMinutes,
		IsExpired:       url.IsExpired(now),
		ClickCount:      url.ClickCount(),
		Clicks:          clicks,
	}
}
