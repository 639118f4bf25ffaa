package poi

import (
	"context"
	"net/http"

	"github.com/sunspotter/sunspotter/internal/models"
)

// Provider is an interface that defines a method for discovering restaurants
// inside a map viewport. The Search method takes a context and a bounding
// region, and returns the raw points of interest found there.
type Provider interface {
	Search(ctx context.Context, region models.BoundingRegion) ([]models.RawPOI, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
