package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrTooManyGames = errors.New("too many live games")

type entry struct {
	mu sync.Mutex
	g  *Game
}

type MemoryRepo struct {
	mu    sync.RWMutex
	games map[string]*entry
	limit int
}

// NewMemoryRepo keeps at most limit games. Finished games are evicted first when full.
func NewMemoryRepo(limit int) *MemoryRepo {
	return &MemoryRepo{games: map[string]*entry{}, limit: limit}
}

func (r *MemoryRepo) Create(ctx context.Context, g *Game) error {
	_ = ctx
	if g == nil || g.State.ID == "" {
		return errors.New("game with id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[g.State.ID]; ok {
		return fmt.Errorf("game %s already exists", g.State.ID)
	}
	if r.limit > 0 && len(r.games) >= r.limit && !r.evictFinishedLocked() {
		return ErrTooManyGames
	}
	r.games[g.State.ID] = &entry{g: g}
	return nil
}

func (r *MemoryRepo) evictFinishedLocked() bool {
	for id, e := range r.games {
		if e.mu.TryLock() {
			over := e.g.State.Over
			e.mu.Unlock()
			if over {
				delete(r.games, id)
				return true
			}
		}
	}
	return false
}

func (r *MemoryRepo) With(ctx context.Context, id string, fn func(g *Game) error) error {
	_ = ctx
	r.mu.RLock()
	e, ok := r.games[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.g)
}

func (r *MemoryRepo) List(ctx context.Context) ([]Summary, error) {
	_ = ctx
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.games))
	for _, e := range r.games {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.g.Summary())
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.games, id)
	return nil
}
