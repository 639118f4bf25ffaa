package poi

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/sunspotter/sunspotter/internal/geodesy"
	"github.com/sunspotter/sunspotter/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for the Google Places API
// and a logger. It searches restaurants with a NearbySearch around the
// center of the viewport.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
}

// NewGoogleProvider initializes a new GoogleProvider with the given API client and logger.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Search finds restaurants inside the region using the Google Places
// NearbySearch API. Places only supports center+radius queries, so the
// region is approximated by the circle circumscribing it.
func (gp *GoogleProvider) Search(ctx context.Context, region models.BoundingRegion) ([]models.RawPOI, error) {
	center := models.GeoPoint{
		Latitude:  (region.South + region.North) / 2,
		Longitude: (region.West + region.East) / 2,
	}
	corner := models.GeoPoint{Latitude: region.North, Longitude: region.East}
	radius := uint(math.Ceil(geodesy.Distance(center, corner)))

	gp.log.DebugContext(ctx, "Searching restaurants using Google Places",
		"lat", center.Latitude, "lon", center.Longitude, "radius", radius)

	req := maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: center.Latitude, Lng: center.Longitude},
		Radius:   radius,
		Type:     maps.PlaceTypeRestaurant,
	}

	resp, err := gp.client.NearbySearch(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to search places: %w", err)
	}

	pois := make([]models.RawPOI, 0, len(resp.Results))
	for _, place := range resp.Results {
		loc := models.GeoPoint{
			Latitude:  place.Geometry.Location.Lat,
			Longitude: place.Geometry.Location.Lng,
		}

		// NearbySearch returns a circle; trim back to the requested viewport.
		if loc.Latitude < region.South || loc.Latitude > region.North ||
			loc.Longitude < region.West || loc.Longitude > region.East {
			continue
		}

		name := place.Name
		if name == "" {
			name = models.UnknownRestaurantName
		}

		pois = append(pois, models.RawPOI{
			ExternalID: place.PlaceID,
			Location:   loc,
			Name:       name,
		})
	}

	return pois, nil
}
