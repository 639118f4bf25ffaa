package poi

import (
	"errors"
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"
)

// ProviderType represents the type of restaurant search provider.
type ProviderType string

const (
	// ProviderTypeOverpass represents the OpenStreetMap Overpass API provider.
	ProviderTypeOverpass ProviderType = "overpass"
	// ProviderTypeGoogle represents the Google Places provider.
	ProviderTypeGoogle ProviderType = "google"
)

// ProviderConfig holds configuration for creating a restaurant search provider.
type ProviderConfig struct {
	Type      ProviderType // Type of provider to create
	APIKey    string       // API key (used by the Google provider)
	RateLimit int          // Rate limit for requests per second
	Logger    *slog.Logger // Logger for the provider
}

// NewProvider creates a restaurant search provider based on the provided
// configuration. It applies the Factory pattern to decouple provider
// instantiation from the pipeline.
//
// Supported provider types:
// - "overpass": OpenStreetMap Overpass API (free, no API key required)
// - "google": Google Places NearbySearch (requires API key)
//
// Returns an error if the provider type is unsupported or if provider creation fails.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeOverpass:
		return newOverpassProvider(config)
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

func newOverpassProvider(config ProviderConfig) (Provider, error) {
	if config.RateLimit == 0 {
		config.RateLimit = 2
		config.Logger.Warn("Rate limit for Overpass API not set, set a default value", "value", config.RateLimit)
	}

	return NewOverpassProvider(config.RateLimit, config.Logger), nil
}

func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
	}
	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Logger), nil
}
