package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	HTTPTimeout time.Duration
	MetricsAddr string
	MySQLDSN    string

	CacheBackend string // memory|redis
	CacheSweep   time.Duration
	RedisAddr    string
	RedisDB      int
	RedisPass    string

	AmadeusBase   string
	AmadeusKey    string
	AmadeusSecret string
	BookingBase   string
	RapidAPIKey   string
	PlacesBase    string
	PlacesKey     string

	ProviderRPS     int
	ProviderTimeout time.Duration
	FlightOrigin    string

	PrewarmWorkers      int
	PrewarmDestinations []string
}

// Load reads the environment, after merging a local .env file if present.
func Load() Config {
	// a missing .env is the normal case outside development
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		HTTPTimeout: time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		MetricsAddr: env("METRICS_ADDR", ""),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/trips?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),

		CacheBackend: strings.ToLower(env("CACHE_BACKEND", "memory")),
		CacheSweep:   time.Duration(atoi("CACHE_SWEEP_SECONDS", 600)) * time.Second,
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisDB:      atoi("REDIS_DB", 0),
		RedisPass:    env("REDIS_PASSWORD", ""),

		AmadeusBase:   env("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),
		AmadeusKey:    env("AMADEUS_API_KEY", ""),
		AmadeusSecret: env("AMADEUS_API_SECRET", ""),
		BookingBase:   env("BOOKING_BASE_URL", "https://booking-com15.p.rapidapi.com"),
		RapidAPIKey:   env("RAPIDAPI_KEY", ""),
		PlacesBase:    env("GOOGLE_PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		PlacesKey:     env("GOOGLE_PLACES_API_KEY", ""),

		ProviderRPS:     atoi("PROVIDER_RPS", 5),
		ProviderTimeout: time.Duration(atoi("PROVIDER_TIMEOUT_SECONDS", 10)) * time.Second,
		FlightOrigin:    strings.ToUpper(env("FLIGHT_ORIGIN", "DEL")),

		PrewarmWorkers:      atoi("PREWARM_WORKERS", 4),
		PrewarmDestinations: list(env("PREWARM_DESTINATIONS", "Bali,Goa,Mumbai,Delhi,Kerala")),
	}
	// missing credentials are expected: those sources serve their fallback catalog
	if c.AmadeusKey == "" || c.AmadeusSecret == "" {
		log.Warn().Msg("AMADEUS_API_KEY/SECRET empty; flights use fallback data")
	}
	if c.RapidAPIKey == "" {
		log.Warn().Msg("RAPIDAPI_KEY empty; hotels, car rentals and activities use fallback data")
	}
	if c.PlacesKey == "" {
		log.Warn().Msg("GOOGLE_PLACES_API_KEY empty; places and food use fallback data")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func list(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
