package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Registry manages users and their named locations on top of a Repository.
type Registry struct {
	repo Repository
}

// NewRegistry creates a Registry.
func NewRegistry(repo Repository) *Registry {
	return &Registry{repo: repo}
}

// Register creates a user with an already-hashed password. Returns
// ErrEmailTaken when the email is in use.
func (r *Registry) Register(ctx context.Context, name, email, hashedPassword string) (*User, error) {
	if _, err := r.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	u := User{
		ID:             uuid.NewString(),
		Name:           name,
		Email:          email,
		HashedPassword: hashedPassword,
		Locations:      []Location{},
	}
	if err := r.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

// FindByEmail resolves a user by email.
func (r *Registry) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.repo.FindByEmail(ctx, email)
}

// All returns every registered user. Used by the background sweep to collect
// distinct fetch targets.
func (r *Registry) All(ctx context.Context) ([]User, error) {
	return r.repo.All(ctx)
}

// AddLocation appends a new location to the user's list. A fresh id is
// assigned; when no name is supplied a positional default is generated.
func (r *Registry) AddLocation(ctx context.Context, u *User, latitude, longitude float64, name string) (*Location, error) {
	if name == "" {
		name = fmt.Sprintf("Location %d", len(u.Locations)+1)
	}

	loc := Location{
		ID:        uuid.NewString(),
		Latitude:  latitude,
		Longitude: longitude,
		Name:      name,
	}
	if err := r.repo.AppendLocation(ctx, u.Email, loc); err != nil {
		return nil, fmt.Errorf("append location: %w", err)
	}
	u.Locations = append(u.Locations, loc)
	return &loc, nil
}

// RemoveLocation deletes a location by id. Returns ErrLocationNotFound when
// the user owns no location with that id; the list is left unchanged.
func (r *Registry) RemoveLocation(ctx context.Context, u *User, locationID string) error {
	if err := r.repo.RemoveLocation(ctx, u.Email, locationID); err != nil {
		return err
	}
	for i, loc := range u.Locations {
		if loc.ID == locationID {
			u.Locations = append(u.Locations[:i], u.Locations[i+1:]...)
			break
		}
	}
	return nil
}
