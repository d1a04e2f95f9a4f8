package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/cloudwatchw/backend/internal/user"
	"github.com/cloudwatchw/backend/internal/weather"
)

// Scheduler periodically refreshes weather for every distinct registered
// location and wipes the record collection on a daily schedule. It shares
// nothing with the request path beyond the store and provider.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	users     *user.Registry
	store     weather.Store
	interval  time.Duration
	purgeAt   string
}

// New creates a Scheduler.
func New(service *weather.Service, users *user.Registry, store weather.Store, interval time.Duration, purgeAt string) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		users:     users,
		store:     store,
		interval:  interval,
		purgeAt:   purgeAt,
	}
}

// Start schedules the sweep and purge jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.sweep); err != nil {
		return err
	}
	if _, err := s.scheduler.Every(1).Day().At(s.purgeAt).Do(s.purge); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("scheduler: started (sweep every %s, purge daily at %s)", s.interval, s.purgeAt)
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// sweep refreshes every user location once. Locations shared across users
// are deduplicated by the orchestrator for the duration of the sweep.
func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	users, err := s.users.All(ctx)
	if err != nil {
		log.Printf("scheduler: failed to list users: %v", err)
		return
	}

	var points []weather.NamedPoint
	for _, u := range users {
		for _, loc := range u.Locations {
			points = append(points, weather.NamedPoint{
				Name:   loc.Name,
				Coords: weather.Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude},
			})
		}
	}
	if len(points) == 0 {
		return
	}

	summary := s.service.RefreshLocations(ctx, points)
	log.Printf("scheduler: sweep complete: attempted=%d succeeded=%d failed=%v",
		summary.Attempted, summary.Succeeded, summary.Failed)
}

// purge wipes the weather record collection.
func (s *Scheduler) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.store.PurgeAll(ctx)
	if err != nil {
		log.Printf("scheduler: purge failed: %v", err)
		return
	}
	log.Printf("scheduler: purged %d weather records", count)
}
