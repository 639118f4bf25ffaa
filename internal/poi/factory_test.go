package poi_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunspotter/sunspotter/internal/poi"
)

func TestNewProvider(t *testing.T) {
	logger := slog.Default()

	t.Run("create Overpass provider successfully", func(t *testing.T) {
		config := poi.ProviderConfig{
			Type:      poi.ProviderTypeOverpass,
			RateLimit: 2,
			Logger:    logger,
		}

		provider, err := poi.NewProvider(config)

		require.NoError(t, err)
		require.NotNil(t, provider)
		_, ok := provider.(*poi.OverpassProvider)
		assert.True(t, ok, "expected provider to be *OverpassProvider")
	})

	t.Run("create Overpass provider without rate limit uses default", func(t *testing.T) {
		config := poi.ProviderConfig{
			Type:   poi.ProviderTypeOverpass,
			Logger: logger,
		}

		provider, err := poi.NewProvider(config)

		require.NoError(t, err)
		require.NotNil(t, provider)
	})

	t.Run("create Google provider successfully", func(t *testing.T) {
		config := poi.ProviderConfig{
			Type:      poi.ProviderTypeGoogle,
			APIKey:    "test-api-key",
			RateLimit: 10,
			Logger:    logger,
		}

		provider, err := poi.NewProvider(config)

		require.NoError(t, err)
		require.NotNil(t, provider)
		_, ok := provider.(*poi.GoogleProvider)
		assert.True(t, ok, "expected provider to be *GoogleProvider")
	})

	t.Run("create Google provider without API key fails", func(t *testing.T) {
		config := poi.ProviderConfig{
			Type:   poi.ProviderTypeGoogle,
			Logger: logger,
		}

		provider, err := poi.NewProvider(config)

		require.Error(t, err)
		require.Nil(t, provider)
		assert.Contains(t, err.Error(), "API key is required for Google provider")
	})

	t.Run("unsupported provider type", func(t *testing.T) {
		config := poi.ProviderConfig{
			Type:   poi.ProviderType("carrier-pigeon"),
			Logger: logger,
		}

		provider, err := poi.NewProvider(config)

		require.Error(t, err)
		require.Nil(t, provider)
		assert.Contains(t, err.Error(), "unsupported provider type")
	})
}
