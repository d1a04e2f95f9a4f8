package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// FetchPolicy selects how reads balance provider load against recency.
type FetchPolicy string

const (
	// PolicyAlwaysFresh fetches from the provider on every read and uses
	// the store only as a write-behind log.
	PolicyAlwaysFresh FetchPolicy = "always_fresh"

	// PolicyCacheFirst consults the store first and fetches only on a
	// miss; a background sweep keeps known locations warm.
	PolicyCacheFirst FetchPolicy = "cache_first"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (FetchPolicy, error) {
	switch FetchPolicy(s) {
	case PolicyAlwaysFresh, PolicyCacheFirst:
		return FetchPolicy(s), nil
	}
	return "", fmt.Errorf("unknown fetch policy %q", s)
}

// NamedPoint is a coordinate pair with a display name, used for batch
// refreshes where failures are reported per location name.
type NamedPoint struct {
	Name   string
	Coords Coordinates
}

// RefreshSummary reports the outcome of one batch refresh or sweep.
type RefreshSummary struct {
	Attempted int      `json:"attempted"`
	Succeeded int      `json:"succeeded"`
	Failed    []string `json:"failed"`
}

// ServiceConfig carries the orchestrator's tunables. Tolerances differ by
// call site: per-user location lookups use a tight window, the public
// latest-near lookup a broader one.
type ServiceConfig struct {
	Policy          FetchPolicy
	LookupTolerance float64 // per-user location lookups
	LatestTolerance float64 // broad "latest known" lookups
}

// Service is the freshness/fetch orchestrator. It decides when a stored
// record is reused and when the provider is called, deduplicates fetches
// across users sharing a coordinate, and controls write timing to the store.
type Service struct {
	store    Store
	provider Provider
	cfg      ServiceConfig
}

// NewService creates a Service with the given store, provider and config.
func NewService(store Store, provider Provider, cfg ServiceConfig) *Service {
	if cfg.Policy == "" {
		cfg.Policy = PolicyCacheFirst
	}
	if cfg.LookupTolerance <= 0 {
		cfg.LookupTolerance = 0.001
	}
	if cfg.LatestTolerance <= 0 {
		cfg.LatestTolerance = 0.01
	}
	return &Service{store: store, provider: provider, cfg: cfg}
}

// Policy returns the active fetch policy.
func (s *Service) Policy() FetchPolicy {
	return s.cfg.Policy
}

// WeatherFor returns the current weather for one of a user's locations.
// Under cache_first a stored record within the lookup tolerance wins; under
// always_fresh the provider is called unconditionally and the store acts as
// a write-behind log.
func (s *Service) WeatherFor(ctx context.Context, coords Coordinates) (*Record, error) {
	if err := coords.Validate(); err != nil {
		return nil, err
	}

	if s.cfg.Policy == PolicyCacheFirst {
		rec, err := s.store.FindLatestNear(ctx, coords, s.cfg.LookupTolerance)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrNotFound) {
			log.Printf("store lookup failed for %s: %v", coords.Key(), err)
		}
	}

	rec, err := s.fetchAndStore(ctx, coords)
	if rec != nil {
		// A fetched record is served even if persisting it failed.
		return rec, nil
	}
	return nil, err
}

// LatestNear serves the public "latest known weather near a point" lookup.
// It uses the broader tolerance and fetches fresh only when nothing is
// stored nearby.
func (s *Service) LatestNear(ctx context.Context, coords Coordinates) (*Record, error) {
	if err := coords.Validate(); err != nil {
		return nil, err
	}

	rec, err := s.store.FindLatestNear(ctx, coords, s.cfg.LatestTolerance)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.Printf("store lookup failed for %s: %v", coords.Key(), err)
	}

	rec, err = s.fetchAndStore(ctx, coords)
	if rec != nil {
		// A fetched record is served even if persisting it failed.
		return rec, nil
	}
	return nil, err
}

// RefreshLocation unconditionally fetches and stores a record for the given
// point. Used when a location is first registered and by explicit refreshes.
func (s *Service) RefreshLocation(ctx context.Context, coords Coordinates) (*Record, error) {
	if err := coords.Validate(); err != nil {
		return nil, err
	}
	return s.fetchAndStore(ctx, coords)
}

// RefreshLocations performs one dedup-aware sweep over a batch of locations.
// Points whose coordinate keys collide are fetched at most once. A failure
// for one location never aborts the batch; its name is recorded in the
// summary and the sweep continues.
func (s *Service) RefreshLocations(ctx context.Context, points []NamedPoint) RefreshSummary {
	summary := RefreshSummary{}
	processed := make(map[string]bool)

	for _, p := range points {
		key := p.Coords.Key()
		if processed[key] {
			continue
		}
		processed[key] = true

		summary.Attempted++
		if _, err := s.RefreshLocation(ctx, p.Coords); err != nil {
			log.Printf("refresh failed for %q (%s): %v", p.Name, key, err)
			summary.Failed = append(summary.Failed, p.Name)
			continue
		}
		summary.Succeeded++
	}

	return summary
}

// fetchAndStore calls the provider and persists the result. A store write
// failure is logged and surfaced: callers use it to report partial success.
func (s *Service) fetchAndStore(ctx context.Context, coords Coordinates) (*Record, error) {
	rec, err := s.provider.Fetch(ctx, coords)
	if err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, *rec); err != nil {
		log.Printf("failed to store weather for %s: %v", coords.Key(), err)
		return rec, fmt.Errorf("store weather record: %w", err)
	}
	return rec, nil
}
