package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Cache stores JSON-serializable values with a per-entry TTL in seconds.
// ttlSec <= 0 means the backend default.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

type TripRepository interface {
	// Write paths
	SaveTripRequest(ctx context.Context, r StoredTripRequest) error
	LinkItinerary(ctx context.Context, tripRequestID, itineraryID string) error
	SaveItinerary(ctx context.Context, it Itinerary) error

	// Read paths
	GetTripRequest(ctx context.Context, id string) (StoredTripRequest, error)
	GetItinerary(ctx context.Context, id string) (Itinerary, error)
	ListItineraries(ctx context.Context, limit int) ([]Itinerary, error)
}
