// Package roads finds the road network around a restaurant and snaps
// locations onto it, so the terrace estimate can face the street.
package roads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sunspotter/sunspotter/internal/models"
	"golang.org/x/time/rate"
)

// OverpassBaseURL is the public Overpass API interpreter endpoint.
const OverpassBaseURL = "https://overpass-api.de/api/interpreter"

// Searcher abstracts the road-network data source. Implementations return
// every road geometry (as an ordered vertex list) within radiusMeters of
// center.
type Searcher interface {
	RoadsNear(ctx context.Context, center models.GeoPoint, radiusMeters float64) ([][]models.GeoPoint, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrRoadsBadPayload is returned when the Overpass response cannot be decoded.
var ErrRoadsBadPayload = errors.New("road search returned malformed payload")

// OverpassClient queries the OpenStreetMap Overpass API for highway
// geometries around a point.
type OverpassClient struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the Overpass interpreter
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter for fair use
}

// NewOverpassClient creates a road client against the public Overpass endpoint.
func NewOverpassClient(rateLimit int, log *slog.Logger) *OverpassClient {
	const timeout = 25
	return &OverpassClient{
		client: &http.Client{
			Timeout: timeout * time.Second,
		},
		baseURL: OverpassBaseURL,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
	}
}

// NewOverpassClientWithClient creates a road client with a custom HTTP client
// and limiter. Useful for testing with mocked HTTP clients.
func NewOverpassClientWithClient(client HTTPClient, limiter *rate.Limiter, log *slog.Logger) *OverpassClient {
	return &OverpassClient{
		client:  client,
		baseURL: OverpassBaseURL,
		log:     log,
		limiter: limiter,
	}
}

type roadElement struct {
	Type     string `json:"type"`
	Geometry []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"geometry"`
}

// RoadsNear returns the vertex lists of all highways within radiusMeters of center.
func (oc *OverpassClient) RoadsNear(
	ctx context.Context,
	center models.GeoPoint,
	radiusMeters float64,
) ([][]models.GeoPoint, error) {
	if err := oc.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	query := fmt.Sprintf(
		`[out:json][timeout:25];way["highway"](around:%f,%f,%f);out geom;`,
		radiusMeters, center.Latitude, center.Longitude,
	)

	oc.log.DebugContext(ctx, "Searching roads using Overpass", "query", query)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, oc.baseURL, strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := oc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute road search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		oc.log.ErrorContext(ctx, "Overpass API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("overpass API returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Elements []roadElement `json:"elements"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoadsBadPayload, err)
	}

	geometries := make([][]models.GeoPoint, 0, len(payload.Elements))
	for _, el := range payload.Elements {
		if el.Type != "way" || len(el.Geometry) == 0 {
			continue
		}

		vertices := make([]models.GeoPoint, 0, len(el.Geometry))
		for _, v := range el.Geometry {
			vertices = append(vertices, models.GeoPoint{Latitude: v.Lat, Longitude: v.Lon})
		}
		geometries = append(geometries, vertices)
	}

	return geometries, nil
}
