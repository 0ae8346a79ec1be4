package score

import (
	"context"
	"sync"
)

const DefaultLimit = 10

// Repository stores finished runs. Top with an empty seed ranks across all seeds.
type Repository interface {
	Add(ctx context.Context, e Entry) error
	Top(ctx context.Context, seed string, n int) ([]Entry, error)
	All(ctx context.Context) ([]Entry, error)
}

type MemoryRepo struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Add(ctx context.Context, e Entry) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *MemoryRepo) Top(ctx context.Context, seed string, n int) ([]Entry, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return top(r.entries, seed, n), nil
}

func (r *MemoryRepo) All(ctx context.Context) ([]Entry, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return top(r.entries, "", 0), nil
}

// Multi fans writes out to several repositories and reads from the first.
type Multi []Repository

func (m Multi) Add(ctx context.Context, e Entry) error {
	for _, r := range m {
		if err := r.Add(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Top(ctx context.Context, seed string, n int) ([]Entry, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return m[0].Top(ctx, seed, n)
}

func (m Multi) All(ctx context.Context) ([]Entry, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return m[0].All(ctx)
}
