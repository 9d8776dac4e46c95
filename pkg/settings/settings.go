package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Settings are process-wide presentation and assistant flags. They have no
// relationship to the task data.
type Settings struct {
	DarkMode     bool `json:"dark_mode"`
	HighContrast bool `json:"high_contrast"`
	Autonomous   bool `json:"autonomous"`
}

// AutonomySetter persists the AI autonomy flag remotely.
type AutonomySetter interface {
	SetAutonomy(ctx context.Context, autonomous bool) error
}

// Store keeps Settings on disk. Writes are deferred until Save and skipped
// when nothing changed.
type Store struct {
	Path    string
	current Settings
	mu      sync.RWMutex
	dirty   bool
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "aide", "settings.json"), nil
}

func NewStore() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Open loads settings from path. A missing file yields the zero Settings.
func Open(path string) (*Store, error) {
	s := &Store{Path: path}
	if _, err := os.Stat(path); err == nil {
		if err := s.Load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) Load() error {
	f, err := os.Open(s.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	var loaded Settings
	if err := json.NewDecoder(f).Decode(&loaded); err != nil {
		return fmt.Errorf("failed to decode settings: %w", err)
	}
	s.mu.Lock()
	s.current = loaded
	s.dirty = false
	s.mu.Unlock()
	return nil
}

func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return err
	}
	f, err := os.Create(s.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.current); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) SetDarkMode(v bool) {
	s.update(func(st *Settings) { st.DarkMode = v })
}

func (s *Store) SetHighContrast(v bool) {
	s.update(func(st *Settings) { st.HighContrast = v })
}

// SetAutonomous posts the flag to remote and records it locally only once
// the remote accepted it.
func (s *Store) SetAutonomous(ctx context.Context, v bool, remote AutonomySetter) error {
	if err := remote.SetAutonomy(ctx, v); err != nil {
		return fmt.Errorf("set autonomy: %w", err)
	}
	s.update(func(st *Settings) { st.Autonomous = v })
	return nil
}

func (s *Store) update(fn func(*Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.current
	fn(&s.current)
	if s.current != before {
		s.dirty = true
	}
}
