package weather

import (
	"fmt"
	"time"
)

// Coordinates is a geographic point submitted by a client or returned by the
// provider. Latitude and longitude are in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks the coordinate ranges. The returned error wraps
// ErrInvalidCoordinates so callers can classify it with errors.Is.
func (c Coordinates) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: %.4f, %.4f", ErrInvalidCoordinates, c.Latitude, c.Longitude)
	}
	return nil
}

// Key returns a canonical string key for deduplicating fetches within one
// sweep. Coordinates are rounded to 4 decimals (roughly 11 m) so that
// near-identical points from different users collapse to one fetch target.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.4f:%.4f", c.Latitude, c.Longitude)
}

// Record is the canonical, provider-independent weather observation.
// Records are immutable once created: they are only appended to the store and
// superseded by newer observations for the same approximate location.
type Record struct {
	City          string  `json:"city" bson:"city"`
	Country       string  `json:"country" bson:"country"`
	Latitude      float64 `json:"latitude" bson:"latitude"`
	Longitude     float64 `json:"longitude" bson:"longitude"`
	Condition     string  `json:"condition" bson:"condition"`
	Description   string  `json:"description" bson:"description"`
	Temperature   float64 `json:"temperature" bson:"temperature"`
	FeelsLike     float64 `json:"feels_like" bson:"feels_like"`
	Humidity      int     `json:"humidity" bson:"humidity"`
	Pressure      int     `json:"pressure" bson:"pressure"`
	WindSpeed     float64 `json:"wind_speed" bson:"wind_speed"`
	WindDirection int     `json:"wind_direction" bson:"wind_direction"`

	// AQI is the air-quality index. It is nil when the air-quality call
	// failed; every other numeric field defaults to its zero value instead.
	AQI *int `json:"aqi,omitempty" bson:"aqi,omitempty"`

	// TimezoneOffset is the provider-reported offset from UTC in seconds.
	// It is carried verbatim for local-time display and is never applied to
	// ObservedAt, which always stays UTC.
	TimezoneOffset int `json:"timezone_offset" bson:"timezone_offset"`

	// ObservedAt is the UTC instant the provider captured the observation.
	ObservedAt time.Time `json:"observed_at" bson:"observed_at"`
}

// Coords returns the record's coordinates.
func (r Record) Coords() Coordinates {
	return Coordinates{Latitude: r.Latitude, Longitude: r.Longitude}
}

// LocalObservedAt reconstructs the observation time in the location's local
// timezone from the verbatim offset.
func (r Record) LocalObservedAt() time.Time {
	return r.ObservedAt.In(time.FixedZone("", r.TimezoneOffset))
}
