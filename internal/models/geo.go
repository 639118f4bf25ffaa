package models

import "errors"

// GeoPoint represents a geographical point in degrees.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`  // Latitude of the geographical point.
	Longitude float64 `json:"longitude"` // Longitude of the geographical point.
}

// BoundingRegion describes the visible map viewport as degree bounds.
type BoundingRegion struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// ErrInvalidRegion is returned when a bounding region does not satisfy
// south < north and west < east.
var ErrInvalidRegion = errors.New("invalid bounding region")

// Validate checks the region invariants before it is handed to the pipeline.
func (r BoundingRegion) Validate() error {
	if r.South >= r.North || r.West >= r.East {
		return ErrInvalidRegion
	}
	return nil
}
