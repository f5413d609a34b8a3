package mongodb

import (
	"shortlink-backend/internal/domain"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type shortURLDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Shortcode       string             `bson:"shortcode"`
	OriginalURL     string             `bson:"original_url"`
	CreatedAt       time.Time          `bson:"created_at"`
	ExpiresAt       time.Time          `bson:"expires_at"`
	ValidityMinutes int                `bson:"validity_minutes"`
	IsActive        bool               `bson:"is_active"`
	Clicks          []clickDocument    `bson:"clicks"`
}

type clickDocument struct {
	Timestamp   time.Time           `bson:"timestamp"`
	SourceIP    string              `bson:"source_ip"`
	Referrer    string              `bson:"referrer"`
	UserAgent   string              `bson:"user_agent"`
	Geolocation geolocationDocument `bson:"geolocation"`
	Device      deviceDocument      `bson:"device"`
}

type geolocationDocument struct {
	Country string  `bson:"country"`
	Region  string  `bson:"region"`
	City    string  `bson:"city"`
	Lat     float64 `bson:"lat"`
	Lon     float64 `bson:"lon"`
}

type deviceDocument struct {
	Type    string `bson:"type"`
	Browser string `bson:"browser"`
	OS      string `bson:"os"`
}

func fromDomain(u *domain.ShortURL) *shortURLDocument {
	// $push needs an array, never null
	clicks := make([]clickDocument, 0, len(u.Clicks))
	for _, c := range u.Clicks {
		clicks = append(clicks, clickFromDomain(c))
	}

	return &shortURLDocument{
		Shortcode:       u.Shortcode,
		OriginalURL:     u.OriginalURL,
		CreatedAt:       u.CreatedAt,
		ExpiresAt:       u.ExpiresAt,
		ValidityMinutes: u.ValidityMinutes,
		IsActive:        u.IsActive,
		Clicks:          clicks,
	}
}

func (d *shortURLDocument) toDomain() *domain.ShortURL {
	clicks := make([]domain.Click, 0, len(d.Clicks))
	for _, c := range d.Clicks {
		clicks = append(clicks, c.toDomain())
	}

	return &domain.ShortURL{
		ID:              d.ID.Hex(),
		Shortcode:       d.Shortcode,
		OriginalURL:     d.OriginalURL,
		CreatedAt:       d.CreatedAt,
		ExpiresAt:       d.ExpiresAt,
		ValidityMinutes: d.ValidityMinutes,
		Clicks:          clicks,
		IsActive:        d.IsActive,
	}
}

func clickFromDomain(c domain.Click) clickDocument {
	return clickDocument{
		Timestamp: c.Timestamp,
		SourceIP:  c.SourceIP,
		Referrer:  c.Referrer,
		UserAgent: c.UserAgent,
		Geolocation: geolocationDocument{
			Country: c.Geolocation.Country,
			Region:  c.Geolocation.Region,
			City:    c.Geolocation.City,
			Lat:     c.Geolocation.Coordinates.Lat,
			Lon:     c.Geolocation.Coordinates.Lon,
		},
		Device: deviceDocument{
			Type:    c.Device.Type,
			Browser: c.Device.Browser,
			OS:      c.Device.OS,
		},
	}
}

func (c clickDocument) toDomain() domain.Click {
	return domain.Click{
		Timestamp: c.Timestamp,
		SourceIP:  c.SourceIP,
		Referrer:  c.Referrer,
		UserAgent: c.UserAgent,
		Geolocation: domain.Geolocation{
			Country: c.Geolocation.Country,
			Region:  c.Geolocation.Region,
			City:    c.Geolocation.City,
			Coordinates: domain.Coordinates{
				Lat: c.Geolocation.Lat,
				Lon: c.Geolocation.Lon,
			},
		},
		Device: domain.Device{
			Type:    c.Device.Type,
			Browser: c.Device.Browser,
			OS:      c.Device.OS,
		},
	}
}
