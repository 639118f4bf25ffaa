package roads_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunspotter/sunspotter/internal/models"
	"github.com/sunspotter/sunspotter/internal/roads"
	"golang.org/x/time/rate"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func TestOverpassClient_RoadsNear(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	noLimit := rate.NewLimiter(rate.Inf, 0)
	center := models.GeoPoint{Latitude: 52.0, Longitude: 4.0}

	t.Run("successful road search", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodPost, req.Method)

				body, readErr := io.ReadAll(req.Body)
				require.NoError(t, readErr)
				assert.Contains(t, string(body), "highway")
				assert.Contains(t, string(body), "around")

				responseBody := `{"elements":[
					{"type":"way","id":1,"geometry":[
						{"lat":52.0001,"lon":4.0},
						{"lat":52.0002,"lon":4.0001}
					]},
					{"type":"way","id":2,"geometry":[]},
					{"type":"node","id":3}
				]}`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		client := roads.NewOverpassClientWithClient(mockClient, noLimit, logger)
		geometries, err := client.RoadsNear(ctx, center, 100)

		require.NoError(t, err)
		require.Len(t, geometries, 1)
		require.Len(t, geometries[0], 2)
		assert.InEpsilon(t, 52.0001, geometries[0][0].Latitude, 1e-9)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGatewayTimeout,
					Body:       io.NopCloser(bytes.NewBufferString(`timeout`)),
				}, nil
			},
		}

		client := roads.NewOverpassClientWithClient(mockClient, noLimit, logger)
		_, err := client.RoadsNear(ctx, center, 100)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "overpass API returned status 504")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`<html>`)),
				}, nil
			},
		}

		client := roads.NewOverpassClientWithClient(mockClient, noLimit, logger)
		_, err := client.RoadsNear(ctx, center, 100)

		require.Error(t, err)
		assert.ErrorIs(t, err, roads.ErrRoadsBadPayload)
	})
}
