// Package conditions determines the environmental state of a terrace point:
// whether it is in shadow right now and whether the sky above is cloudy.
package conditions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
	"github.com/sunspotter/sunspotter/internal/models"
	"github.com/sunspotter/sunspotter/internal/resilience"
)

// CloudSource abstracts the weather collaborator: current cloud cover in
// percent [0,100] at a location.
type CloudSource interface {
	CloudCover(ctx context.Context, location models.GeoPoint) (float64, error)
}

// OpenMeteoBaseURL is the Open-Meteo forecast endpoint. No API key required.
const OpenMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteoClient implements CloudSource against the Open-Meteo API.
type OpenMeteoClient struct {
	client  resilience.HTTPClient
	baseURL string
	backoff resilience.BackoffConfig
	circuit *gobreaker.CircuitBreaker
	log     *slog.Logger
}

// NewOpenMeteoClient creates an Open-Meteo cloud cover client.
func NewOpenMeteoClient(client resilience.HTTPClient, log *slog.Logger) *OpenMeteoClient {
	return &OpenMeteoClient{
		client:  client,
		baseURL: OpenMeteoBaseURL,
		backoff: resilience.DefaultBackoff(),
		circuit: resilience.NewBreaker("openmeteo"),
		log:     log,
	}
}

// CloudCover returns the current cloud cover percentage at the location.
func (c *OpenMeteoClient) CloudCover(ctx context.Context, location models.GeoPoint) (float64, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", location.Latitude))
		values.Set("longitude", fmt.Sprintf("%f", location.Longitude))
		values.Set("current", "cloud_cover")

		u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := resilience.Do(ctx, c.client, c.backoff, c.circuit, buildRequest)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch cloud cover: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			CloudCover float64 `json:"cloud_cover"`
		} `json:"current"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode open-meteo response: %w", err)
	}

	c.log.DebugContext(ctx, "Fetched cloud cover",
		"lat", location.Latitude, "lon", location.Longitude,
		"coverage", payload.Current.CloudCover)

	return payload.Current.CloudCover, nil
}
