package user

import (
	"context"
	"sync"
)

// MemoryRepository is a concurrency-safe in-memory Repository and
// ReportStore, used in tests and single-node development.
type MemoryRepository struct {
	mu      sync.RWMutex
	users   map[string]*User // keyed by email
	reports []Report
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*User)}
}

func (m *MemoryRepository) Create(ctx context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.Email]; ok {
		return ErrEmailTaken
	}
	cp := u
	cp.Locations = append([]Location(nil), u.Locations...)
	m.users[u.Email] = &cp
	return nil
}

func (m *MemoryRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	cp.Locations = append([]Location(nil), u.Locations...)
	return &cp, nil
}

func (m *MemoryRepository) All(ctx context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		cp.Locations = append([]Location(nil), u.Locations...)
		out = append(out, cp)
	}
	return out, nil
}

func (m *MemoryRepository) AppendLocation(ctx context.Context, email string, loc Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[email]
	if !ok {
		return ErrNotFound
	}
	u.Locations = append(u.Locations, loc)
	return nil
}

func (m *MemoryRepository) RemoveLocation(ctx context.Context, email, locationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[email]
	if !ok {
		return ErrNotFound
	}
	for i, loc := range u.Locations {
		if loc.ID == locationID {
			u.Locations = append(u.Locations[:i], u.Locations[i+1:]...)
			return nil
		}
	}
	return ErrLocationNotFound
}

func (m *MemoryRepository) SaveReport(ctx context.Context, r Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports = append(m.reports, r)
	return nil
}
