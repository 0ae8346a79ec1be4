package score

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const FileName = "scores.json"

type fileState struct {
	Entries []Entry `json:"entries"`
}

type store struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

// FileRepo is the local high-score table. It keeps the best limit runs per seed.
type FileRepo struct {
	store *store
	limit int
}

// NewFileRepo opens dataDir/scores.json. A corrupt file is replaced by an empty table;
// the returned repo is usable and the error says what was discarded.
func NewFileRepo(dataDir string, limit int) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	r := &FileRepo{
		store: &store{path: filepath.Join(dataDir, FileName)},
		limit: limit,
	}
	return r, r.store.load()
}

func (s *store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.s = fileState{}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read high scores: %w", err)
	}
	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return fmt.Errorf("high scores reset, %s is corrupt: %w", s.path, err)
	}
	s.s = loaded
	return nil
}

func (s *store) saveLocked() error {
	b, err := json.MarshalIndent(s.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (r *FileRepo) Add(ctx context.Context, e Entry) error {
	_ = ctx
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	entries := append(r.store.s.Entries, e)
	sortEntries(entries)

	kept := entries[:0]
	perSeed := map[string]int{}
	for _, x := range entries {
		if perSeed[x.Seed] >= r.limit {
			continue
		}
		perSeed[x.Seed]++
		kept = append(kept, x)
	}
	r.store.s.Entries = kept
	return r.store.saveLocked()
}

func (r *FileRepo) Top(ctx context.Context, seed string, n int) ([]Entry, error) {
	_ = ctx
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return top(r.store.s.Entries, seed, n), nil
}

func (r *FileRepo) All(ctx context.Context) ([]Entry, error) {
	_ = ctx
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return top(r.store.s.Entries, "", 0), nil
}

// Qualifies reports whether e would make the table for its seed.
func (r *FileRepo) Qualifies(e Entry) bool {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	ranked := top(r.store.s.Entries, e.Seed, 0)
	if len(ranked) < r.limit {
		return true
	}
	return Better(e, ranked[len(ranked)-1])
}
