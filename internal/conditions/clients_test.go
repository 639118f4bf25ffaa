package conditions_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunspotter/sunspotter/internal/conditions"
	"github.com/sunspotter/sunspotter/internal/models"
)

// mockHTTPClient is a mock implementation of the HTTP client for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func TestOpenMeteoClient_CloudCover(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	location := models.GeoPoint{Latitude: 52.0, Longitude: 4.0}

	t.Run("successful lookup", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Contains(t, req.URL.String(), "api.open-meteo.com")
				assert.Equal(t, "cloud_cover", req.URL.Query().Get("current"))

				responseBody := `{"current":{"cloud_cover":37.5}}`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		client := conditions.NewOpenMeteoClient(mockClient, logger)
		coverage, err := client.CloudCover(ctx, location)

		require.NoError(t, err)
		assert.InEpsilon(t, 37.5, coverage, 1e-9)
	})

	t.Run("transport error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		client := conditions.NewOpenMeteoClient(mockClient, logger)
		_, err := client.CloudCover(ctx, location)

		require.Error(t, err)
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`nope`)),
				}, nil
			},
		}

		client := conditions.NewOpenMeteoClient(mockClient, logger)
		_, err := client.CloudCover(ctx, location)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode open-meteo response")
	})
}

func TestShadeSimClient_InShadow(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	location := models.GeoPoint{Latitude: 52.0, Longitude: 4.0}
	moment := time.Date(2025, 6, 21, 14, 0, 0, 0, time.UTC)

	t.Run("in shadow verdict", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "test-key", req.URL.Query().Get("key"))
				assert.NotEmpty(t, req.URL.Query().Get("ts"))

				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`{"in_shadow":true}`)),
				}, nil
			},
		}

		client := conditions.NewShadeSimClient(mockClient, "https://shadesim.test/v1/shadow", "test-key", logger)
		inShadow, err := client.InShadow(ctx, location, moment)

		require.NoError(t, err)
		assert.True(t, inShadow)
	})

	t.Run("not in shadow verdict", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`{"in_shadow":false}`)),
				}, nil
			},
		}

		client := conditions.NewShadeSimClient(mockClient, "https://shadesim.test/v1/shadow", "", logger)
		inShadow, err := client.InShadow(ctx, location, moment)

		require.NoError(t, err)
		assert.False(t, inShadow)
	})

	t.Run("missing verdict is an error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`{}`)),
				}, nil
			},
		}

		client := conditions.NewShadeSimClient(mockClient, "https://shadesim.test/v1/shadow", "", logger)
		_, err := client.InShadow(ctx, location, moment)

		require.ErrorIs(t, err, conditions.ErrShadowUnavailable)
	})
}
