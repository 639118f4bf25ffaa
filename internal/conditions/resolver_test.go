package conditions_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/sunspotter/sunspotter/internal/conditions"
	"github.com/sunspotter/sunspotter/internal/models"
)

// mockOracle is a mock implementation of ShadowOracle for testing.
type mockOracle struct {
	inShadowFunc func(ctx context.Context, location models.GeoPoint, at time.Time) (bool, error)
	calls        int
}

func (m *mockOracle) InShadow(ctx context.Context, location models.GeoPoint, at time.Time) (bool, error) {
	m.calls++
	return m.inShadowFunc(ctx, location, at)
}

// mockClouds is a mock implementation of CloudSource for testing.
type mockClouds struct {
	coverFunc func(ctx context.Context, location models.GeoPoint) (float64, error)
}

func (m *mockClouds) CloudCover(ctx context.Context, location models.GeoPoint) (float64, error) {
	return m.coverFunc(ctx, location)
}

func at(hour int) time.Time {
	return time.Date(2025, 6, 21, hour, 30, 0, 0, time.UTC)
}

func staticClouds(coverage float64) *mockClouds {
	return &mockClouds{coverFunc: func(_ context.Context, _ models.GeoPoint) (float64, error) {
		return coverage, nil
	}}
}

func TestResolver_ShadeStatus(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	terrace := models.GeoPoint{Latitude: 52.0, Longitude: 4.0}

	t.Run("night hours are shade without oracle call", func(t *testing.T) {
		oracle := &mockOracle{inShadowFunc: func(_ context.Context, _ models.GeoPoint, _ time.Time) (bool, error) {
			return false, nil
		}}
		resolver := conditions.NewResolver(oracle, staticClouds(0), 0, logger)

		for _, hour := range []int{0, 3, 5, 21, 23} {
			assert.Equal(t, models.Shade, resolver.ShadeStatus(ctx, terrace, at(hour)), "hour %d", hour)
		}
		assert.Zero(t, oracle.calls)
	})

	t.Run("oracle verdict is used during daytime", func(t *testing.T) {
		oracle := &mockOracle{inShadowFunc: func(_ context.Context, _ models.GeoPoint, _ time.Time) (bool, error) {
			return false, nil
		}}
		resolver := conditions.NewResolver(oracle, staticClouds(0), 0, logger)

		assert.Equal(t, models.NoShade, resolver.ShadeStatus(ctx, terrace, at(14)))
		assert.Equal(t, 1, oracle.calls)

		oracle.inShadowFunc = func(_ context.Context, _ models.GeoPoint, _ time.Time) (bool, error) {
			return true, nil
		}
		assert.Equal(t, models.Shade, resolver.ShadeStatus(ctx, terrace, at(14)))
	})

	t.Run("oracle failure falls back to time of day", func(t *testing.T) {
		oracle := &mockOracle{inShadowFunc: func(_ context.Context, _ models.GeoPoint, _ time.Time) (bool, error) {
			return false, assert.AnError
		}}
		resolver := conditions.NewResolver(oracle, staticClouds(0), 0, logger)

		// Low sun angle hours count as shade.
		assert.Equal(t, models.Shade, resolver.ShadeStatus(ctx, terrace, at(7)))
		assert.Equal(t, models.Shade, resolver.ShadeStatus(ctx, terrace, at(18)))
		// Midday hours count as no shade.
		assert.Equal(t, models.NoShade, resolver.ShadeStatus(ctx, terrace, at(9)))
		assert.Equal(t, models.NoShade, resolver.ShadeStatus(ctx, terrace, at(14)))
		assert.Equal(t, models.NoShade, resolver.ShadeStatus(ctx, terrace, at(17)))
	})
}

func TestResolver_CloudStatus(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	location := models.GeoPoint{Latitude: 52.0, Longitude: 4.0}
	noOracle := &mockOracle{inShadowFunc: func(_ context.Context, _ models.GeoPoint, _ time.Time) (bool, error) {
		return false, nil
	}}

	t.Run("threshold boundary", func(t *testing.T) {
		tests := []struct {
			coverage float64
			want     models.CloudStatus
		}{
			{0, models.NotCloudy},
			{10, models.NotCloudy},
			{20, models.NotCloudy}, // exactly at the threshold is not cloudy
			{20.0001, models.Cloudy},
			{100, models.Cloudy},
		}

		for _, tt := range tests {
			resolver := conditions.NewResolver(noOracle, staticClouds(tt.coverage), 0, logger)
			assert.Equal(t, tt.want, resolver.CloudStatus(ctx, location), "coverage %f", tt.coverage)
		}
	})

	t.Run("weather failure defaults to not cloudy", func(t *testing.T) {
		clouds := &mockClouds{coverFunc: func(_ context.Context, _ models.GeoPoint) (float64, error) {
			return 0, assert.AnError
		}}
		resolver := conditions.NewResolver(noOracle, clouds, 0, logger)

		assert.Equal(t, models.NotCloudy, resolver.CloudStatus(ctx, location))
	})

	t.Run("custom threshold", func(t *testing.T) {
		resolver := conditions.NewResolver(noOracle, staticClouds(60), 75, logger)
		assert.Equal(t, models.NotCloudy, resolver.CloudStatus(ctx, location))
	})
}
