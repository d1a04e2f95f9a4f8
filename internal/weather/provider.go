package weather

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no record exists within tolerance of a point.
	ErrNotFound = errors.New("no weather data near location")

	// ErrInvalidCoordinates marks caller input outside the valid lat/lon
	// ranges. It is the only fetch failure that propagates to the client.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrProviderUnavailable marks a soft failure of the upstream provider
	// (network error, timeout, non-success status). Callers log it and
	// degrade rather than fail the request.
	ErrProviderUnavailable = errors.New("weather provider unavailable")
)

// Provider abstracts the upstream weather source (e.g. OpenWeatherMap).
// Fetch returns a fully normalized record, ErrInvalidCoordinates for bad
// input, or an error wrapping ErrProviderUnavailable on soft failure. A
// failed air-quality lookup is not an error: the record comes back with a
// nil AQI instead.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, coords Coordinates) (*Record, error)
}

// Store is the persistence contract for canonical weather records. Records
// are append-only; lookups match by coordinate range because provider
// coordinates may differ in precision from user-submitted ones.
type Store interface {
	// Insert appends a new record. It never mutates existing records.
	Insert(ctx context.Context, rec Record) error

	// FindLatestNear returns the record with the greatest ObservedAt whose
	// coordinates fall within tolerance degrees of the query point, or
	// ErrNotFound.
	FindLatestNear(ctx context.Context, coords Coordinates, tolerance float64) (*Record, error)

	// PurgeAll deletes every record and reports how many were removed.
	// Used only by scheduled maintenance, never by request handlers.
	PurgeAll(ctx context.Context) (int64, error)
}
