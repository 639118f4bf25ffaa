package roads

import (
	"context"
	"log/slog"

	"github.com/sunspotter/sunspotter/internal/models"
)

// DefaultSearchRadiusMeters is how far around a restaurant the snapper
// looks for roads.
const DefaultSearchRadiusMeters = 100.0

// Snapper resolves the nearest road vertex for a location.
type Snapper struct {
	searcher     Searcher
	radiusMeters float64
	log          *slog.Logger
}

// NewSnapper creates a Snapper over the given road searcher. A radius of 0
// falls back to DefaultSearchRadiusMeters.
func NewSnapper(searcher Searcher, radiusMeters float64, log *slog.Logger) *Snapper {
	if radiusMeters <= 0 {
		radiusMeters = DefaultSearchRadiusMeters
	}
	return &Snapper{searcher: searcher, radiusMeters: radiusMeters, log: log}
}

// NearestRoadPoint returns the road vertex closest to location. When the
// search fails or finds no roads, the location itself is returned, so the
// terrace offset degenerates to bearing 0 (due north).
//
// Distance is the planar Euclidean distance in raw degree units, not a
// geodesic. This introduces latitude-dependent distortion but matches the
// established vertex selection; changing it would change which vertex wins.
// Ties keep the first-encountered vertex, in the order of the search response.
func (s *Snapper) NearestRoadPoint(ctx context.Context, location models.GeoPoint) models.GeoPoint {
	geometries, err := s.searcher.RoadsNear(ctx, location, s.radiusMeters)
	if err != nil {
		s.log.WarnContext(ctx, "Road search failed, keeping original location",
			"lat", location.Latitude, "lon", location.Longitude, "error", err)
		return location
	}
	if len(geometries) == 0 {
		s.log.DebugContext(ctx, "No roads found near location",
			"lat", location.Latitude, "lon", location.Longitude)
		return location
	}

	var (
		best     models.GeoPoint
		bestDist float64
		found    bool
	)

	for _, geometry := range geometries {
		for _, vertex := range geometry {
			dLat := vertex.Latitude - location.Latitude
			dLon := vertex.Longitude - location.Longitude
			dist := dLat*dLat + dLon*dLon

			if !found || dist < bestDist {
				best = vertex
				bestDist = dist
				found = true
			}
		}
	}

	if !found {
		return location
	}
	return best
}
