package domain

import "time"

// Unknown is the placeholder for any click attribute that could not be resolved.
const Unknown = "Unknown"

// DirectReferrer marks a click that arrived without a usable Referer header.
const DirectReferrer = "direct"

// Click представляет один переход по короткой ссылке
type Click struct {
	Timestamp   time.Time
	SourceIP    string
	Referrer    string
	UserAgent   string
	Geolocation Geolocation
	Device      Device
}

// Geolocation is the IP-derived location of a click.
type Geolocation struct {
	Country     string
	Region      string
	City        string
	Coordinates Coordinates
}

// Coordinates are latitude/longitude in degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Device describes the client parsed from the User-Agent header.
type Device struct {
	Type    string // mobile, desktop, tablet, bot, unknown
	Browser string
	OS      string
}

// UnknownGeolocation is used for private, loopback and unresolvable addresses.
func UnknownGeolocation() Geolocation {
	return Geolocation{
		Country: Unknown,
		Region:  Unknown,
		City:    Unknown,
	}
}

// UnknownDevice is used when the User-Agent could not be classified.
func UnknownDevice() Device {
	return Device{
		Type:    "unknown",
		Browser: "unknown",
		OS:      "unknown",
	}
}
