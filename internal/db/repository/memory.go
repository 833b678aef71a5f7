package repository

import (
	"context"
	"sort"
	"sync"

	"refinery-modeler/internal/db/mapper"
	"refinery-modeler/internal/domain"
)

var _ domain.SharedDimensionRepository = (*MemorySharedDimensionRepo)(nil)

// MemorySharedDimensionRepo is a process-local shared dimension store. Groups
// are kept in their stored encoding so callers never share state with it.
type MemorySharedDimensionRepo struct {
	mu   sync.RWMutex
	rows map[string]mapper.SharedDimensionRow
}

// NewMemorySharedDimensionRepo creates an empty MemorySharedDimensionRepo.
func NewMemorySharedDimensionRepo() *MemorySharedDimensionRepo {
	return &MemorySharedDimensionRepo{rows: make(map[string]mapper.SharedDimensionRow)}
}

// Save inserts or replaces the group stored under its name.
func (r *MemorySharedDimensionRepo) Save(_ context.Context, group *domain.AnnotationGroup) error {
	if err := validateGroup(group); err != nil {
		return err
	}
	row, err := mapper.SharedDimensionToDB(group)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[row.Name] = row
	return nil
}

// Get returns the group stored under name.
func (r *MemorySharedDimensionRepo) Get(_ context.Context, name string) (*domain.AnnotationGroup, error) {
	r.mu.RLock()
	row, ok := r.rows[name]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound("shared dimension %q not found", name)
	}
	return mapper.SharedDimensionFromDB(row)
}

// List returns the stored group names in ascending order.
func (r *MemorySharedDimensionRepo) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.rows))
	for name := range r.rows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the group stored under name.
func (r *MemorySharedDimensionRepo) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[name]; !ok {
		return domain.ErrNotFound("shared dimension %q not found", name)
	}
	delete(r.rows, name)
	return nil
}
