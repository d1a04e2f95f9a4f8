package user

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when registering an already-used email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrLocationNotFound is returned when removing a location id the user
	// does not own.
	ErrLocationNotFound = errors.New("location not found")
)

// Repository is the persistence contract for user documents with their
// embedded location lists. Location append/remove are atomic at the single
// document level; there is no cross-operation transaction.
type Repository interface {
	Create(ctx context.Context, u User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	All(ctx context.Context) ([]User, error)

	AppendLocation(ctx context.Context, email string, loc Location) error
	RemoveLocation(ctx context.Context, email, locationID string) error
}

// ReportStore persists free-form user reports, insert-only.
type ReportStore interface {
	SaveReport(ctx context.Context, r Report) error
}
