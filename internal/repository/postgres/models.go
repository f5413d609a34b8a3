package postgres

import (
	"shortlink-backend/internal/domain"
	"strconv"
	"time"
)

// shortURLModel строка таблицы short_urls
type shortURLModel struct {
	ID              int64        `gorm:"primaryKey;column:id"`
	Shortcode       string       `gorm:"column:shortcode;size:20;not null;uniqueIndex"`
	OriginalURL     string       `gorm:"column:original_url;type:text;not null"`
	ValidityMinutes int          `gorm:"column:validity_minutes;not null"`
	IsActive        bool         `gorm:"column:is_active;not null"`
	CreatedAt       time.Time    `gorm:"column:created_at;not null"`
	ExpiresAt       time.Time    `gorm:"column:expires_at;not null;index"`
	Clicks          []clickModel `gorm:"foreignKey:ShortURLID;constraint:OnDelete:CASCADE"`
}

// TableName возвращает название таблицы для GORM
func (shortURLModel) TableName() string {
	return "short_urls"
}

// clickModel строка таблицы clicks
type clickModel struct {
	ID         int64     `gorm:"primaryKey;column:id"`
	ShortURLID int64     `gorm:"column:short_url_id;not null;index"`
	ClickedAt  time.Time `gorm:"column:clicked_at;not null;index"`
	SourceIP   string    `gorm:"column:source_ip;type:text"`
	Referrer   string    `gorm:"column:referrer;type:text"`
	UserAgent  string    `gorm:"column:user_agent;type:text"`
	Country    string    `gorm:"column:country;size:100"`
	Region     string    `gorm:"column:region;size:100"`
	City       string    `gorm:"column:city;size:100"`
	Latitude   float64   `gorm:"column:latitude"`
	Longitude  float64   `gorm:"column:longitude"`
	DeviceType string    `gorm:"column:device_type;size:20"`
	Browser    string    `gorm:"column:browser;size:100"`
	OS         string    `gorm:"column:os;size:100"`
}

// TableName возвращает название таблицы для GORM
func (clickModel) TableName() string {
	return "clicks"
}

// Models returns the GORM models in migration order.
func Models() []interface{} {
	return []interface{}{
		&shortURLModel{}, // сначала ссылки
		&clickModel{},    // клики зависят от ссылок
	}
}

func fromDomain(u *domain.ShortURL) *shortURLModel {
	return &shortURLModel{
		Shortcode:       u.Shortcode,
		OriginalURL:     u.OriginalURL,
		ValidityMinutes: u.ValidityMinutes,
		IsActive:        u.IsActive,
		CreatedAt:       u.CreatedAt,
		ExpiresAt:       u.ExpiresAt,
	}
}

func (m *shortURLModel) toDomain() *domain.ShortURL {
	clicks := make([]domain.Click, 0, len(m.Clicks))
	for i := range m.Clicks {
		clicks = append(clicks, m.Clicks[i].toDomain())
	}

	return &domain.ShortURL{
		ID:              strconv.FormatInt(m.ID, 10),
		Shortcode:       m.Shortcode,
		OriginalURL:     m.OriginalURL,
		CreatedAt:       m.CreatedAt,
		ExpiresAt:       m.ExpiresAt,
		ValidityMinutes: m.ValidityMinutes,
		Clicks:          clicks,
		IsActive:        m.IsActive,
	}
}

func clickFromDomain(shortURLID int64, c domain.Click) *clickModel {
	return &clickModel{
		ShortURLID: shortURLID,
		ClickedAt:  c.Timestamp,
		SourceIP:   c.SourceIP,
		Referrer:   c.Referrer,
		UserAgent:  c.UserAgent,
		Country:    c.Geolocation.Country,
		Region:     c.Geolocation.Region,
		City:       c.Geolocation.City,
		Latitude:   c.Geolocation.Coordinates.Lat,
		Longitude:  c.Geolocation.Coordinates.Lon,
		DeviceType: c.Device.Type,
		Browser:    c.Device.Browser,
		OS:         c.Device.OS,
	}
}

func (m *clickModel) toDomain() domain.Click {
	return domain.Click{
		Timestamp: m.ClickedAt,
		SourceIP:  m.SourceIP,
		Referrer:  m.Referrer,
		UserAgent: m.UserAgent,
		Geolocation: domain.Geolocation{
			Country: m.Country,
			Region:  m.Region,
			City:    m.City,
			Coordinates: domain.Coordinates{
				Lat: m.Latitude,
				Lon: m.Longitude,
			},
		},
		Device: domain.Device{
			Type:    m.DeviceType,
			Browser: m.Browser,
			OS:      m.OS,
		},
	}
}
