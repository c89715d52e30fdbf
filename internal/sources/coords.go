package sources

import (
	"strings"

	"trip_planner/internal/domain"
)

var knownDestinations = map[string]domain.GeoPoint{
	"bali":   {Lat: -8.3405, Lng: 115.092},
	"mumbai": {Lat: 19.076, Lng: 72.8777},
	"delhi":  {Lat: 28.6139, Lng: 77.209},
	"goa":    {Lat: 15.2993, Lng: 74.124},
	"kerala": {Lat: 10.8505, Lng: 76.2711},
}

// Coordinates looks up a pickup point for destination. This is a fixed
// table, not a geocoder; unknown places resolve to Bali.
func Coordinates(destination string) domain.GeoPoint {
	if p, ok := knownDestinations[strings.ToLower(strings.TrimSpace(destination))]; ok {
		return p
	}
	return knownDestinations["bali"]
}
