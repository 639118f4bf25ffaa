package poi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sunspotter/sunspotter/internal/models"
	"golang.org/x/time/rate"
)

// OverpassBaseURL is the public Overpass API interpreter endpoint.
const OverpassBaseURL = "https://overpass-api.de/api/interpreter"

// OverpassProvider implements the Provider interface using the OpenStreetMap
// Overpass API. This is a free service with fair-use limits, so requests go
// through a rate limiter.
type OverpassProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the Overpass interpreter
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter for fair use
}

// Common errors for the Overpass provider.
var (
	ErrOverpassBadPayload = errors.New("overpass API returned malformed payload")
)

// overpassElement is a single node in an Overpass JSON response.
type overpassElement struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// NewOverpassProvider creates a new Overpass restaurant search provider.
// Uses the public Overpass endpoint by default.
func NewOverpassProvider(rateLimit int, log *slog.Logger) *OverpassProvider {
	const timeout = 25
	return &OverpassProvider{
		client: &http.Client{
			Timeout: timeout * time.Second,
		},
		baseURL: OverpassBaseURL,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
	}
}

// NewOverpassProviderWithClient creates an Overpass provider with a custom
// HTTP client and limiter. Useful for testing with mocked HTTP clients.
func NewOverpassProviderWithClient(client HTTPClient, limiter *rate.Limiter, log *slog.Logger) *OverpassProvider {
	return &OverpassProvider{
		client:  client,
		baseURL: OverpassBaseURL,
		log:     log,
		limiter: limiter,
	}
}

// Search returns all restaurant nodes inside the region. Restaurants without
// a name tag get the placeholder name.
func (op *OverpassProvider) Search(ctx context.Context, region models.BoundingRegion) ([]models.RawPOI, error) {
	if err := op.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	query := fmt.Sprintf(
		`[out:json][timeout:25];node["amenity"="restaurant"](%f,%f,%f,%f);out;`,
		region.South, region.West, region.North, region.East,
	)

	op.log.DebugContext(ctx, "Searching restaurants using Overpass", "query", query)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, op.baseURL, strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := op.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		op.log.ErrorContext(ctx, "Overpass API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("overpass API returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload overpassResponse
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOverpassBadPayload, err)
	}

	pois := make([]models.RawPOI, 0, len(payload.Elements))
	for _, el := range payload.Elements {
		if el.Type != "node" {
			continue
		}

		name := el.Tags["name"]
		if name == "" {
			name = models.UnknownRestaurantName
		}

		pois = append(pois, models.RawPOI{
			ExternalID: strconv.FormatInt(el.ID, 10),
			Location:   models.GeoPoint{Latitude: el.Lat, Longitude: el.Lon},
			Name:       name,
		})
	}

	op.log.InfoContext(ctx, "Overpass search finished", "restaurants", len(pois))

	return pois, nil
}
