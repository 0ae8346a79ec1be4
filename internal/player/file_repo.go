package player

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const FileName = "settings.json"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrKeyInUse       = errors.New("key already bound")
	ErrEmptyKey       = errors.New("empty key")
	ErrUnknownStep    = errors.New("unknown onboarding step")
)

type store struct {
	mu   sync.RWMutex
	path string
	s    Settings
}

type FileRepo struct {
	store *store
}

// NewFileRepo opens dataDir/settings.json. A corrupt file is replaced by defaults;
// the returned repo is usable and the error says what was discarded.
func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	st := &store{
		path: filepath.Join(dataDir, FileName),
		s:    defaultSettings(),
	}
	return &FileRepo{store: st}, st.load()
}

func (s *store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.s = defaultSettings()
			return nil
		}
		return fmt.Errorf("read settings: %w", err)
	}

	var loaded Settings
	if err := json.Unmarshal(b, &loaded); err != nil {
		s.s = defaultSettings()
		return fmt.Errorf("settings reset, %s is corrupt: %w", s.path, err)
	}
	s.s = normalizeSettings(loaded)
	return nil
}

func (s *store) saveLocked() error {
	b, err := json.MarshalIndent(s.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (r *FileRepo) Get() Settings {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return cloneSettings(r.store.s)
}

func (r *FileRepo) update(fn func(s *Settings) error) (Settings, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	next := cloneSettings(r.store.s)
	if err := fn(&next); err != nil {
		return cloneSettings(r.store.s), err
	}
	r.store.s = next
	if err := r.store.saveLocked(); err != nil {
		return Settings{}, err
	}
	return cloneSettings(next), nil
}

func (r *FileRepo) SetPlayerName(name string) (Settings, error) {
	return r.update(func(s *Settings) error {
		name = strings.TrimSpace(name)
		if name == "" {
			name = defaultSettings().PlayerName
		}
		s.PlayerName = name
		return nil
	})
}

func (r *FileRepo) SetSound(enabled bool) (Settings, error) {
	return r.update(func(s *Settings) error {
		s.SoundEnabled = enabled
		return nil
	})
}

// SetKeybinding binds key to cmd. A key already used by another command is rejected.
func (r *FileRepo) SetKeybinding(cmd, key string) (Settings, error) {
	return r.update(func(s *Settings) error {
		cmd = strings.TrimSpace(cmd)
		key = strings.ToLower(strings.TrimSpace(key))
		if _, ok := DefaultKeybindings()[cmd]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
		}
		if key == "" {
			return ErrEmptyKey
		}
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			return fmt.Errorf("%w: %q selects actions", ErrKeyInUse, key)
		}
		if other, ok := s.CommandFor(key); ok && other != cmd {
			return fmt.Errorf("%w: %q is bound to %s", ErrKeyInUse, key, other)
		}
		s.Keybindings[cmd] = key
		return nil
	})
}

func (r *FileRepo) ResetKeybindings() (Settings, error) {
	return r.update(func(s *Settings) error {
		s.Keybindings = DefaultKeybindings()
		return nil
	})
}

func (r *FileRepo) MarkStepSeen(step string) (Settings, error) {
	return r.update(func(s *Settings) error {
		known := false
		for _, st := range Steps {
			if st == step {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%w: %q", ErrUnknownStep, step)
		}
		s.Onboarding.StepsSeen[step] = true
		return nil
	})
}

func (r *FileRepo) DismissTutorial() (Settings, error) {
	return r.update(func(s *Settings) error {
		s.Onboarding.Dismissed = true
		return nil
	})
}

// RestartTutorial clears onboarding progress.
func (r *FileRepo) RestartTutorial() (Settings, error) {
	return r.update(func(s *Settings) error {
		s.Onboarding = defaultSettings().Onboarding
		return nil
	})
}
