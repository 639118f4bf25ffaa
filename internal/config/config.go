package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the sunspotter service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the public HTTP API.
// - MonitorPort: The port for the monitoring server (/metrics, /healthz).
// - ProviderType: The restaurant search provider to use (overpass, google).
// - GoogleAPIKey: The API key for the Google Places provider.
// - ShadowBaseURL: The base URL of the shadow-simulation service.
// - ShadowAPIKey: The API key for the shadow-simulation service.
// - Pacing: The delay between enrichment records (rate-limit safety).
// - MinZoom: The zoom level below which no enrichment run is triggered.
// - TerraceOffsetMeters: Distance from the building toward the nearest road.
// - RoadRadiusMeters: Radius of the road search around a restaurant.
// - CloudyThresholdPct: Cloud coverage above which the sky counts as cloudy.
// - SearchRateLimit: Requests per second against the restaurant search provider.
type Config struct {
	Env                 string
	Port                int
	MonitorPort         int
	ProviderType        string
	GoogleAPIKey        string
	ShadowBaseURL       string
	ShadowAPIKey        string
	Pacing              time.Duration
	MinZoom             int
	TerraceOffsetMeters float64
	RoadRadiusMeters    float64
	CloudyThresholdPct  float64
	SearchRateLimit     int
}

// MustLoad loads the configuration from the environment and panics on
// malformed values.
func MustLoad() *Config {
	_ = godotenv.Load()

	pacing, err := time.ParseDuration(setDefaultEnv("SUNSPOTTER_PACING", "200ms"))
	if err != nil {
		panic("failed to parse pacing delay from configuration")
	}

	port, err := strconv.Atoi(setDefaultEnv("SUNSPOTTER_PORT", "8080"))
	if err != nil {
		panic("failed to parse API port from configuration")
	}

	monitorPort, err := strconv.Atoi(setDefaultEnv("SUNSPOTTER_MONITOR_PORT", "9090"))
	if err != nil {
		panic("failed to parse monitoring port from configuration")
	}

	minZoom, err := strconv.Atoi(setDefaultEnv("SUNSPOTTER_MIN_ZOOM", "16"))
	if err != nil {
		panic("failed to parse minimum zoom from configuration, must be an integer")
	}

	rateLimit, err := strconv.Atoi(setDefaultEnv("SUNSPOTTER_SEARCH_RATE_LIMIT", "2"))
	if err != nil {
		panic("failed to parse search rate limit from configuration, must be an integer")
	}

	return &Config{
		Env:                 setDefaultEnv("SUNSPOTTER_ENV", "production"),
		Port:                port,
		MonitorPort:         monitorPort,
		ProviderType:        setDefaultEnv("SUNSPOTTER_POI_PROVIDER", "overpass"),
		GoogleAPIKey:        os.Getenv("SUNSPOTTER_GOOGLE_API_KEY"),
		ShadowBaseURL:       setDefaultEnv("SUNSPOTTER_SHADOW_URL", "https://api.shadesim.io/v1/shadow"),
		ShadowAPIKey:        os.Getenv("SUNSPOTTER_SHADOW_API_KEY"),
		Pacing:              pacing,
		MinZoom:             minZoom,
		TerraceOffsetMeters: mustFloatEnv("SUNSPOTTER_TERRACE_OFFSET_M", 5.0),
		RoadRadiusMeters:    mustFloatEnv("SUNSPOTTER_ROAD_RADIUS_M", 100.0),
		CloudyThresholdPct:  mustFloatEnv("SUNSPOTTER_CLOUDY_THRESHOLD", 20.0),
		SearchRateLimit:     rateLimit,
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}

func mustFloatEnv(key string, def float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return def
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		panic("failed to parse " + key + " from configuration, must be a number")
	}

	return parsed
}
