// Package geo resolves IP addresses to approximate locations using a MaxMind City database.
package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
)

// Location is the subset of a City record the service stores per click.
// Empty strings mean the database had no value for that field.
type Location struct {
	Country string // ISO 3166-1 alpha-2
	Region  string // first subdivision ISO code
	City    string
	Lat     float64
	Lon     float64
}

// Reader looks addresses up in an opened .mmdb file. Safe for concurrent use.
type Reader struct {
	db  *geoip2.Reader
	log *zap.Logger
}

// Open loads the database at path.
func Open(path string, log *zap.Logger) (*Reader, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database %s: %w", path, err)
	}

	log.Info("geoip database loaded",
		zap.String("path", path),
		zap.String("type", db.Metadata().DatabaseType))

	return &Reader{db: db, log: log}, nil
}

// Lookup returns the location of ip, or false when the address is not public
// or the database has no record for it.
func (r *Reader) Lookup(ip net.IP) (*Location, bool) {
	if r == nil || r.db == nil || !IsPublic(ip) {
		return nil, false
	}

	rec, err := r.db.City(ip)
	if err != nil {
		r.log.Debug("geoip lookup failed", zap.String("ip", ip.String()), zap.Error(err))
		return nil, false
	}

	loc := &Location{
		Country: rec.Country.IsoCode,
		City:    rec.City.Names["en"],
		Lat:     rec.Location.Latitude,
		Lon:     rec.Location.Longitude,
	}
	if len(rec.Subdivisions) > 0 {
		loc.Region = rec.Subdivisions[0].IsoCode
	}

	if loc.Country == "" && loc.City == "" && loc.Lat == 0 && loc.Lon == 0 {
		return nil, false
	}
	return loc, true
}

// Close releases the memory-mapped database.
func (r *Reader) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// IsPublic reports whether ip is a routable address worth looking up.
// Loopback, RFC 1918, link-local and unspecified addresses are not.
func IsPublic(ip net.IP) bool {
	if ip == nil {
		return false
	}
	return !(ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsMulticast())
}
