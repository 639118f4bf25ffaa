package conditions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"github.com/sunspotter/sunspotter/internal/models"
	"github.com/sunspotter/sunspotter/internal/resilience"
)

// ShadowOracle abstracts the third-party shadow simulation. The resolver
// must not assume anything about its construction; it is injected as a
// dependency and may fail, in which case the time-of-day fallback applies.
type ShadowOracle interface {
	InShadow(ctx context.Context, location models.GeoPoint, at time.Time) (bool, error)
}

// ErrShadowUnavailable is returned when the oracle responds without a usable verdict.
var ErrShadowUnavailable = errors.New("shadow oracle returned no verdict")

// ShadeSimClient implements ShadowOracle against an HTTP shade-simulation
// service (ShadeMap-compatible contract).
type ShadeSimClient struct {
	client  resilience.HTTPClient
	baseURL string
	apiKey  string
	backoff resilience.BackoffConfig
	circuit *gobreaker.CircuitBreaker
	log     *slog.Logger
}

// NewShadeSimClient creates a shadow oracle client for the given endpoint.
func NewShadeSimClient(client resilience.HTTPClient, baseURL, apiKey string, log *slog.Logger) *ShadeSimClient {
	return &ShadeSimClient{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		backoff: resilience.DefaultBackoff(),
		circuit: resilience.NewBreaker("shadesim"),
		log:     log,
	}
}

// InShadow reports whether the point is in shadow at the given moment.
func (c *ShadeSimClient) InShadow(ctx context.Context, location models.GeoPoint, at time.Time) (bool, error) {
	buildRequest := func() (*http.Request, error) {
		reqURL, err := url.Parse(c.baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse base URL: %w", err)
		}

		query := reqURL.Query()
		query.Set("lat", fmt.Sprintf("%f", location.Latitude))
		query.Set("lon", fmt.Sprintf("%f", location.Longitude))
		query.Set("ts", strconv.FormatInt(at.Unix(), 10))
		if c.apiKey != "" {
			query.Set("key", c.apiKey)
		}
		reqURL.RawQuery = query.Encode()

		req, err := http.NewRequest(http.MethodGet, reqURL.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := resilience.Do(ctx, c.client, c.backoff, c.circuit, buildRequest)
	if err != nil {
		return false, fmt.Errorf("failed to query shadow oracle: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		InShadow *bool `json:"in_shadow"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Errorf("failed to decode shadow response: %w", err)
	}
	if payload.InShadow == nil {
		return false, ErrShadowUnavailable
	}

	c.log.DebugContext(ctx, "Shadow oracle verdict",
		"lat", location.Latitude, "lon", location.Longitude, "in_shadow", *payload.InShadow)

	return *payload.InShadow, nil
}
