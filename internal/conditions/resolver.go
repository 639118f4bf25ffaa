package conditions

import (
	"context"
	"log/slog"
	"time"

	"github.com/sunspotter/sunspotter/internal/models"
)

// Hour boundaries for the time-of-day rules. Outside [nightStartHour,
// nightEndHour] the sun is below the horizon and no oracle call is made;
// outside [fallbackStartHour, fallbackEndHour] a failed oracle is read as
// "low sun angle", a deliberately coarser proxy.
const (
	nightEndHour      = 6
	nightStartHour    = 20
	fallbackEndHour   = 9
	fallbackStartHour = 17
)

// DefaultCloudyThresholdPct is the cloud coverage above which the sky
// counts as cloudy.
const DefaultCloudyThresholdPct = 20.0

// Resolver determines shade and cloud status for a location. The two
// sub-operations are independently failure-tolerant: a failure in one never
// blocks or invalidates the other.
type Resolver struct {
	oracle      ShadowOracle
	clouds      CloudSource
	cloudyAbove float64
	log         *slog.Logger
}

// NewResolver creates a Resolver. A threshold of 0 falls back to
// DefaultCloudyThresholdPct.
func NewResolver(oracle ShadowOracle, clouds CloudSource, cloudyAbovePct float64, log *slog.Logger) *Resolver {
	if cloudyAbovePct <= 0 {
		cloudyAbovePct = DefaultCloudyThresholdPct
	}
	return &Resolver{oracle: oracle, clouds: clouds, cloudyAbove: cloudyAbovePct, log: log}
}

// ShadeStatus determines whether the location is shaded at the given time.
// Before 6:00 and after 20:00 local hours it is Shade unconditionally, with
// no oracle call. When the oracle fails, hours before 9:00 and after 17:00
// count as Shade.
func (r *Resolver) ShadeStatus(ctx context.Context, location models.GeoPoint, at time.Time) models.ShadeStatus {
	hour := at.Hour()
	if hour < nightEndHour || hour > nightStartHour {
		return models.Shade
	}

	inShadow, err := r.oracle.InShadow(ctx, location, at)
	if err != nil {
		r.log.WarnContext(ctx, "Shadow oracle failed, using time-of-day fallback",
			"hour", hour, "error", err)
		if hour < fallbackEndHour || hour > fallbackStartHour {
			return models.Shade
		}
		return models.NoShade
	}

	if inShadow {
		return models.Shade
	}
	return models.NoShade
}

// CloudStatus determines whether the sky over the location counts as
// cloudy. A weather collaborator failure defaults the coverage to 0.
func (r *Resolver) CloudStatus(ctx context.Context, location models.GeoPoint) models.CloudStatus {
	coverage, err := r.clouds.CloudCover(ctx, location)
	if err != nil {
		r.log.WarnContext(ctx, "Weather lookup failed, defaulting cloud cover to 0",
			"lat", location.Latitude, "lon", location.Longitude, "error", err)
		coverage = 0
	}

	if coverage > r.cloudyAbove {
		return models.Cloudy
	}
	return models.NotCloudy
}
