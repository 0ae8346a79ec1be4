package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var slotName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// SaveStore keeps save slots as JSON files under a directory.
type SaveStore struct {
	mu  sync.Mutex
	dir string
}

func NewSaveStore(dir string) (*SaveStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &SaveStore{dir: dir}, nil
}

func (s *SaveStore) path(slot string) (string, error) {
	if !slotName.MatchString(slot) {
		return "", fmt.Errorf("%w %q", ErrBadSlot, slot)
	}
	return filepath.Join(s.dir, slot+".json"), nil
}

func (s *SaveStore) Save(slot string, g *Game) error {
	path, err := s.path(slot)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(g.State, "", "  ")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load restores a slot. A missing slot returns ErrNotFound.
func (s *SaveStore) Load(slot string, opts Options) (*Game, error) {
	path, err := s.path(slot)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	b, err := os.ReadFile(path)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: save %s", ErrNotFound, slot)
		}
		return nil, err
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("corrupt save %s: %w", slot, err)
	}
	return Restore(st, opts)
}

// Slots lists saved slot names, sorted.
func (s *SaveStore) Slots() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(out)
	return out, nil
}

func (s *SaveStore) Delete(slot string) error {
	path, err := s.path(slot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
