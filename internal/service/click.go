package service

import (
	"net"
	"net/url"
	"shortlink-backend/internal/domain"
	"shortlink-backend/pkg/geo"
	"strings"
	"time"
)

const defaultClientIP = "127.0.0.1"

func (s *URLShortenerService) buildClick(now time.Time, c ClickContext) domain.Click {
	ip := strings.TrimSpace(c.IP)
	if ip == "" {
		ip = defaultClientIP
	}

	userAgent := c.UserAgent
	if userAgent == "" {
		userAgent = domain.Unknown
	}

	return domain.Click{
		Timestamp:   now,
		SourceIP:    ip,
		Referrer:    referrerHost(c.Referrer),
		UserAgent:   userAgent,
		Geolocation: s.locate(ip),
		Device:      s.device(c.UserAgent),
	}
}

func (s *URLShortenerService) locate(ip string) domain.Geolocation {
	addr := net.ParseIP(ip)
	if s.geo == nil || !geo.IsPublic(addr) {
		return domain.UnknownGeolocation()
	}

	loc, ok := s.geo.Lookup(addr)
	if !ok {
		return domain.UnknownGeolocation()
	}

	return domain.Geolocation{
		Country: orUnknown(loc.Country),
		Region:  orUnknown(loc.Region),
		City:    orUnknown(loc.City),
		Coordinates: domain.Coordinates{
			Lat: loc.Lat,
			Lon: loc.Lon,
		},
	}
}

func (s *URLShortenerService) device(userAgent string) domain.Device {
	if s.devices == nil {
		return domain.UnknownDevice()
	}

	info := s.devices.ParseUserAgent(userAgent)
	return domain.Device{
		Type:    info.DeviceType,
		Browser: info.Browser,
		OS:      info.OS,
	}
}

// referrerHost keeps only the hostname of a Referer header.
func referrerHost(referrer string) string {
	referrer = strings.TrimSpace(referrer)
	if referrer == "" {
		return domain.DirectReferrer
	}

	u, err := url.Parse(referrer)
	if err != nil || u.Hostname() == "" {
		return domain.DirectReferrer
	}
	return u.Hostname()
}

func orUnknown(s string) string {
	if s == "" {
		return domain.Unknown
	}
	return s
}
