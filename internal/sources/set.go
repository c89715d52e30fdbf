package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/cache"
	"trip_planner/internal/adapters/providers"
	redisad "trip_planner/internal/adapters/redis"
	"trip_planner/internal/domain"
	"trip_planner/internal/shared"
)

// Clients are the live provider APIs, one per source.
type Clients struct {
	Flights     FlightSearcher
	Hotels      HotelSearcher
	CarRentals  CarSearcher
	Attractions AttractionSearcher
	Places      PlaceSearcher
	// Photos serves the images PlaceSearcher.PhotoURL points at.
	Photos *providers.Places
}

// ClientsFromConfig builds the provider clients. Missing credentials are
// fine: those clients report ErrNoCredentials and the sources fall back.
func ClientsFromConfig(cfg shared.Config) Clients {
	booking := providers.NewBooking(cfg.BookingBase, cfg.RapidAPIKey, cfg.ProviderRPS)
	places := providers.NewPlaces(cfg.PlacesBase, cfg.PlacesKey, cfg.ProviderRPS)
	return Clients{
		Flights:     providers.NewAmadeus(cfg.AmadeusBase, cfg.AmadeusKey, cfg.AmadeusSecret, cfg.ProviderRPS),
		Hotels:      booking,
		CarRentals:  booking,
		Attractions: booking,
		Places:      places,
		Photos:      places,
	}
}

// Set holds the six sources sharing one cache.
type Set struct {
	Flights    *Source[FlightQuery]
	Hotels     *Source[HotelQuery]
	CarRentals *Source[CarRentalQuery]
	Places     *Source[PlacesQuery]
	Activities *Source[ActivitiesQuery]
	Food       *Source[FoodQuery]
}

func NewSet(cl Clients, c domain.Cache, timeout time.Duration) (*Set, error) {
	cat, err := DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("load fallback catalog: %w", err)
	}
	return &Set{
		Flights:    New[FlightQuery](NewFlights(cl.Flights, cat), c, timeout),
		Hotels:     New[HotelQuery](NewHotels(cl.Hotels, cat), c, timeout),
		CarRentals: New[CarRentalQuery](NewCarRentals(cl.CarRentals, cat), c, timeout),
		Places:     New[PlacesQuery](NewPlaces(cl.Places, cat), c, timeout),
		Activities: New[ActivitiesQuery](NewActivities(cl.Attractions, cat), c, timeout),
		Food:       New[FoodQuery](NewFood(cl.Places, cat), c, timeout),
	}, nil
}

// OpenCache builds the configured backend. The in-memory cache is swept in
// the background until ctx ends; the returned func releases the backend.
func OpenCache(ctx context.Context, cfg shared.Config) (domain.Cache, func(), error) {
	switch cfg.CacheBackend {
	case "redis":
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis cache")
		return rc, func() { _ = rc.Close() }, nil
	case "", "memory":
		m := cache.NewMemory(cache.DefaultTTL)
		go m.Run(ctx, cfg.CacheSweep)
		return m, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}
}
