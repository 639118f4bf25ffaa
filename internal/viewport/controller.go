// Package viewport decides when the visible map region triggers an
// enrichment run and which run's results are current.
package viewport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sunspotter/sunspotter/internal/metrics"
	"github.com/sunspotter/sunspotter/internal/models"
	"github.com/sunspotter/sunspotter/internal/pipeline"
	"github.com/sunspotter/sunspotter/internal/poi"
)

// DefaultMinZoom is the zoom level below which no enrichment run is
// triggered and prior results are cleared.
const DefaultMinZoom = 16

var (
	// ErrBelowMinZoom is returned when the viewport is zoomed out too far
	// for an enrichment run.
	ErrBelowMinZoom = errors.New("zoom level below minimum for enrichment")
	// ErrPOIUnavailable is returned when the restaurant search failed and
	// the run degraded to an empty result set.
	ErrPOIUnavailable = errors.New("restaurant search unavailable")
	// ErrStaleRun is returned when a newer viewport superseded the run
	// before it finished; its results were discarded.
	ErrStaleRun = errors.New("run superseded by a newer viewport")
)

// Runner is the pipeline surface the controller drives.
type Runner interface {
	Run(ctx context.Context, pois []models.RawPOI, onProgress pipeline.ProgressFunc) []models.EnrichedRestaurant
}

// Controller owns the current result set. Every Refresh starts a run under
// a fresh generation token; only the highest generation may commit its
// results, so a slow earlier run can never overwrite a fresher viewport.
type Controller struct {
	search   poi.Provider
	enricher Runner
	metrics  *metrics.Metrics
	log      *slog.Logger
	minZoom  int

	mu         sync.Mutex
	generation uint64
	results    []models.EnrichedRestaurant
	progress   models.Progress
}

// NewController creates a Controller. A minZoom of 0 falls back to
// DefaultMinZoom.
func NewController(
	search poi.Provider,
	enricher Runner,
	appMetrics *metrics.Metrics,
	minZoom int,
	log *slog.Logger,
) *Controller {
	if minZoom <= 0 {
		minZoom = DefaultMinZoom
	}
	return &Controller{
		search:   search,
		enricher: enricher,
		metrics:  appMetrics,
		log:      log,
		minZoom:  minZoom,
	}
}

// Refresh reacts to a viewport change. It validates the region, gates on the
// zoom level, searches restaurants, runs the pipeline, and commits the
// results if no newer refresh started in the meantime.
func (c *Controller) Refresh(
	ctx context.Context,
	region models.BoundingRegion,
	zoom int,
) ([]models.EnrichedRestaurant, uint64, error) {
	if zoom < c.minZoom {
		gen := c.clear()
		c.log.DebugContext(ctx, "Viewport below minimum zoom, results cleared",
			"zoom", zoom, "min_zoom", c.minZoom)
		return nil, gen, ErrBelowMinZoom
	}

	if err := region.Validate(); err != nil {
		return nil, c.currentGeneration(), err
	}

	gen := c.nextGeneration()

	pois, err := c.search.Search(ctx, region)
	if err != nil {
		c.log.ErrorContext(ctx, "Restaurant search failed, degrading to empty result set",
			"generation", gen, "error", err)
		c.metrics.CollaboratorErrors.WithLabelValues("poi_search").Inc()
		c.commit(gen, []models.EnrichedRestaurant{})
		return nil, gen, fmt.Errorf("%w: %v", ErrPOIUnavailable, err)
	}

	results := c.enricher.Run(ctx, pois, func(p models.Progress) {
		c.reportProgress(gen, p)
	})

	if !c.commit(gen, results) {
		c.log.InfoContext(ctx, "Discarding stale run results",
			"generation", gen, "restaurants", len(results))
		c.metrics.StaleRunsDiscarded.Inc()
		return results, gen, ErrStaleRun
	}

	return results, gen, nil
}

// Snapshot returns the currently committed result set and its generation.
func (c *Controller) Snapshot() ([]models.EnrichedRestaurant, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results, c.generation
}

// Progress returns the latest progress of the newest run and its generation.
func (c *Controller) Progress() (models.Progress, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress, c.generation
}

// nextGeneration starts a new run generation and resets its progress.
func (c *Controller) nextGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.progress = models.Progress{}
	return c.generation
}

func (c *Controller) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// clear drops committed results and advances the generation so that any
// in-flight run becomes stale.
func (c *Controller) clear() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.results = nil
	c.progress = models.Progress{}
	return c.generation
}

// commit stores the results if gen is still the newest generation. Returns
// false when a newer refresh superseded this run.
func (c *Controller) commit(gen uint64, results []models.EnrichedRestaurant) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	c.results = results
	return true
}

// reportProgress records progress updates from a run, ignoring stale runs.
func (c *Controller) reportProgress(gen uint64, p models.Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.progress = p
}
