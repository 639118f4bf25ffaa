package models

// UnknownRestaurantName is used when the upstream search returns a
// restaurant without a name tag.
const UnknownRestaurantName = "Unknown Restaurant"

// RawPOI is a restaurant as returned by the point-of-interest search,
// before enrichment.
type RawPOI struct {
	ExternalID string   `json:"id"`       // ExternalID is the upstream identifier of the point.
	Location   GeoPoint `json:"location"` // Location is the restaurant's own position.
	Name       string   `json:"name"`     // Name falls back to UnknownRestaurantName when absent upstream.
}

// ShadeStatus says whether the estimated terrace point is in shadow.
type ShadeStatus string

const (
	Shade   ShadeStatus = "shade"
	NoShade ShadeStatus = "no_shade"
)

// CloudStatus says whether the sky over the restaurant counts as cloudy.
type CloudStatus string

const (
	Cloudy    CloudStatus = "cloudy"
	NotCloudy CloudStatus = "not_cloudy"
)

// SunnyStatus is the primary output signal: unshaded and under clear sky.
type SunnyStatus string

const (
	Sunny    SunnyStatus = "sunny"
	NotSunny SunnyStatus = "not_sunny"
)

// SunnyFrom derives the sunny classification from its two inputs.
func SunnyFrom(shade ShadeStatus, cloud CloudStatus) SunnyStatus {
	if shade == NoShade && cloud == NotCloudy {
		return Sunny
	}
	return NotSunny
}

// EnrichedRestaurant is a RawPOI extended with the terrace estimate and the
// environmental classification. Created exactly once per pipeline run per
// RawPOI and immutable afterwards.
type EnrichedRestaurant struct {
	RawPOI

	TerraceLocation GeoPoint    `json:"terraceLocation"`
	Shade           ShadeStatus `json:"shadeStatus"`
	Cloud           CloudStatus `json:"cloudStatus"`
	Sunny           SunnyStatus `json:"sunnyStatus"`
}

// Progress reports how far a single pipeline run has advanced. Both fields
// are zero outside a run.
type Progress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
}
