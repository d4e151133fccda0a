package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

var _ StateRepository = (*MemoryStateRepository)(nil)

// MemoryStateRepository keeps state for the lifetime of the process.
type MemoryStateRepository struct {
	mu      sync.RWMutex
	entries map[string]StateEntry
	now     func() time.Time
}

// NewMemoryStateRepository returns an empty repository.
func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{entries: map[string]StateEntry{}, now: time.Now}
}

func (r *MemoryStateRepository) Get(_ context.Context, key string) (*StateEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (r *MemoryStateRepository) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = StateEntry{Key: key, Value: value, UpdatedAt: r.now().UTC()}
	return nil
}

func (r *MemoryStateRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; !ok {
		return ErrNotFound
	}
	delete(r.entries, key)
	return nil
}

func (r *MemoryStateRepository) List(_ context.Context, opts ListOptions) (*ListResult[StateEntry], error) {
	opts = normalizeListOptions(opts)
	r.mu.RLock()
	all := make([]StateEntry, 0, len(r.entries))
	for k, e := range r.entries {
		if strings.HasPrefix(k, opts.Prefix) {
			all = append(all, e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })
	return &ListResult[StateEntry]{Items: window(all, opts), Total: len(all)}, nil
}
