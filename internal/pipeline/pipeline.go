// Package pipeline enriches raw restaurant records with a terrace estimate
// and a sunny classification, one record at a time.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/sunspotter/sunspotter/internal/geodesy"
	"github.com/sunspotter/sunspotter/internal/metrics"
	"github.com/sunspotter/sunspotter/internal/models"
	"golang.org/x/time/rate"
)

// DefaultTerraceOffsetMeters is how far from the building toward the
// nearest road the terrace is assumed to sit.
const DefaultTerraceOffsetMeters = 5.0

// DefaultPacing is the default inter-record delay, keeping the external
// collaborators within fair-use limits.
const DefaultPacing = 200 * time.Millisecond

// RoadSnapper resolves the nearest road vertex for a location.
type RoadSnapper interface {
	NearestRoadPoint(ctx context.Context, location models.GeoPoint) models.GeoPoint
}

// StatusResolver determines shade and cloud status.
type StatusResolver interface {
	ShadeStatus(ctx context.Context, location models.GeoPoint, at time.Time) models.ShadeStatus
	CloudStatus(ctx context.Context, location models.GeoPoint) models.CloudStatus
}

// ProgressFunc observes per-record progress during a run.
type ProgressFunc func(models.Progress)

// Enricher runs the enrichment pipeline. Records are processed strictly in
// input order with no concurrent overlap; every record of a run is paced by
// the limiter before the next one starts.
type Enricher struct {
	snapper      RoadSnapper
	resolver     StatusResolver
	metrics      *metrics.Metrics
	log          *slog.Logger
	pacer        *rate.Limiter
	offsetMeters float64
	now          func() time.Time
}

// NewEnricher creates an Enricher. A pacing of 0 falls back to
// DefaultPacing, an offset of 0 to DefaultTerraceOffsetMeters.
func NewEnricher(
	snapper RoadSnapper,
	resolver StatusResolver,
	appMetrics *metrics.Metrics,
	pacing time.Duration,
	offsetMeters float64,
	log *slog.Logger,
) *Enricher {
	if pacing <= 0 {
		pacing = DefaultPacing
	}
	if offsetMeters <= 0 {
		offsetMeters = DefaultTerraceOffsetMeters
	}
	return &Enricher{
		snapper:      snapper,
		resolver:     resolver,
		metrics:      appMetrics,
		log:          log,
		pacer:        rate.NewLimiter(rate.Every(pacing), 1),
		offsetMeters: offsetMeters,
		now:          time.Now,
	}
}

// Run enriches every record of pois, in input order, and returns a result
// list of exactly len(pois) entries. A run never fails as a whole: records
// whose processing errors are appended with failure defaults. onProgress, if
// non-nil, observes a (0, 0) reset at run start, (i, total) after each
// record, and a final (0, 0) reset once the run completes.
func (e *Enricher) Run(ctx context.Context, pois []models.RawPOI, onProgress ProgressFunc) []models.EnrichedRestaurant {
	report := func(p models.Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	total := len(pois)
	report(models.Progress{})

	e.metrics.ActiveRuns.Inc()
	defer e.metrics.ActiveRuns.Dec()

	e.log.InfoContext(ctx, "Enrichment run started", "restaurants", total)

	results := make([]models.EnrichedRestaurant, 0, total)
	for i, p := range pois {
		results = append(results, e.enrichOne(ctx, p))
		report(models.Progress{Processed: i + 1, Total: total})

		// Pace before the next record; a cancelled context just skips the
		// delay, the remaining records still run to keep the result full.
		if i < total-1 {
			if err := e.pacer.Wait(ctx); err != nil {
				e.log.DebugContext(ctx, "Pacing wait interrupted", "error", err)
			}
		}
	}

	e.log.InfoContext(ctx, "Enrichment run finished", "restaurants", len(results))
	report(models.Progress{})

	return results
}

// enrichOne executes the per-record steps in order. Collaborator failures
// are already absorbed by the snapper and resolver; anything unexpected is
// caught here so a single record can never abort the batch.
func (e *Enricher) enrichOne(ctx context.Context, p models.RawPOI) (result models.EnrichedRestaurant) {
	defer func() {
		if r := recover(); r != nil {
			e.log.ErrorContext(ctx, "Record enrichment failed, using defaults",
				"id", p.ExternalID, "panic", r)
			e.metrics.RecordsProcessed.WithLabelValues("defaulted").Inc()
			result = Defaulted(p)
		}
	}()

	startTime := time.Now()
	roadPoint := e.snapper.NearestRoadPoint(ctx, p.Location)
	e.metrics.RequestSeconds.WithLabelValues("roads").Observe(time.Since(startTime).Seconds())

	brg := geodesy.Bearing(p.Location, roadPoint)
	terrace := geodesy.Destination(p.Location, brg, e.offsetMeters)

	startTime = time.Now()
	shade := e.resolver.ShadeStatus(ctx, terrace, e.now())
	e.metrics.RequestSeconds.WithLabelValues("shadow").Observe(time.Since(startTime).Seconds())

	// Cloud cover is sampled at the restaurant itself: weather resolution is
	// far coarser than the terrace offset.
	startTime = time.Now()
	cloud := e.resolver.CloudStatus(ctx, p.Location)
	e.metrics.RequestSeconds.WithLabelValues("weather").Observe(time.Since(startTime).Seconds())

	e.metrics.RecordsProcessed.WithLabelValues("enriched").Inc()

	return models.EnrichedRestaurant{
		RawPOI:          p,
		TerraceLocation: terrace,
		Shade:           shade,
		Cloud:           cloud,
		Sunny:           models.SunnyFrom(shade, cloud),
	}
}

// Defaulted is the failure enrichment for a record whose processing errored:
// terrace at the restaurant itself, no shade, no clouds, not sunny.
func Defaulted(p models.RawPOI) models.EnrichedRestaurant {
	return models.EnrichedRestaurant{
		RawPOI:          p,
		TerraceLocation: p.Location,
		Shade:           models.NoShade,
		Cloud:           models.NotCloudy,
		Sunny:           models.NotSunny,
	}
}
