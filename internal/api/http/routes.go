// Package httpapi exposes the enrichment pipeline to map clients: a terraces
// endpoint that reacts to viewport changes and a progress endpoint for
// loading indicators.
package httpapi

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/sunspotter/sunspotter/internal/models"
	"github.com/sunspotter/sunspotter/internal/viewport"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, ctrl *viewport.Controller) {
	v1 := app.Group("/api/v1")

	v1.Get("/terraces", func(c *fiber.Ctx) error {
		var req viewportQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		results, gen, err := ctrl.Refresh(c.Context(), req.toRegion(), req.Zoom)
		switch {
		case err == nil:
			return c.JSON(fiber.Map{
				"restaurants": results,
				"generation":  gen,
			})
		case errors.Is(err, viewport.ErrBelowMinZoom):
			return c.JSON(fiber.Map{
				"restaurants": []models.EnrichedRestaurant{},
				"generation":  gen,
				"notice":      "zoomed out too far; zoom in to load terraces",
			})
		case errors.Is(err, models.ErrInvalidRegion):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, viewport.ErrPOIUnavailable):
			return c.JSON(fiber.Map{
				"restaurants": []models.EnrichedRestaurant{},
				"generation":  gen,
				"notice":      "restaurant search is currently unavailable",
			})
		case errors.Is(err, viewport.ErrStaleRun):
			// A newer viewport superseded this request; answer with the
			// freshest committed snapshot instead.
			snapshot, snapGen := ctrl.Snapshot()
			return c.JSON(fiber.Map{
				"restaurants": snapshot,
				"generation":  snapGen,
				"notice":      "viewport changed while loading; returning the newest results",
			})
		default:
			return fiber.NewError(fiber.StatusInternalServerError, "failed to refresh terraces")
		}
	})

	v1.Get("/terraces/progress", func(c *fiber.Ctx) error {
		progress, gen := ctrl.Progress()
		return c.JSON(fiber.Map{
			"processed":  progress.Processed,
			"total":      progress.Total,
			"generation": gen,
		})
	})
}

// viewportQuery holds query parameters describing the visible map region.
type viewportQuery struct {
	South float64 `validate:"gte=-90,lte=90"`
	West  float64 `validate:"gte=-180,lte=180"`
	North float64 `validate:"gte=-90,lte=90"`
	East  float64 `validate:"gte=-180,lte=180"`
	Zoom  int     `validate:"gte=1,lte=22"`
}

func (q *viewportQuery) toRegion() models.BoundingRegion {
	return models.BoundingRegion{
		South: q.South,
		West:  q.West,
		North: q.North,
		East:  q.East,
	}
}

func (q *viewportQuery) bind(c *fiber.Ctx) error {
	var err error
	if q.South, err = parseFloatParam(c, "south"); err != nil {
		return err
	}
	if q.West, err = parseFloatParam(c, "west"); err != nil {
		return err
	}
	if q.North, err = parseFloatParam(c, "north"); err != nil {
		return err
	}
	if q.East, err = parseFloatParam(c, "east"); err != nil {
		return err
	}

	zoomStr := c.Query("zoom")
	if zoomStr == "" {
		return errors.New("zoom query parameter is required")
	}
	if q.Zoom, err = strconv.Atoi(zoomStr); err != nil {
		return fmt.Errorf("invalid zoom: %w", err)
	}

	return validate.Struct(q)
}

func parseFloatParam(c *fiber.Ctx, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, fmt.Errorf("%s query parameter is required", key)
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return value, nil
}
