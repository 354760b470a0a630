// Package store persists the chain editor's state: the live chain as
// chain.json and the snapshot slots / named presets in a sqlite file
// next to it.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"chainrack/internal/model"
)

const (
	ChainFileName  = "chain.json"
	SQLiteFileName = "chainrack.sqlite"
)

type Store struct {
	Dir string
}

// DiscoverDir walks up from start looking for a .chainrack directory.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, ".chainrack")
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir resolves the store directory: the nearest .chainrack above
// the working directory, or a fresh one beside it.
func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, ".chainrack"), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) chainPath() string {
	return filepath.Join(s.Dir, ChainFileName)
}

// Load reads the live chain. A missing file is an empty chain, not an
// error, so first runs need no init step.
func (s Store) Load() (*model.Chain, error) {
	b, err := os.ReadFile(s.chainPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &model.Chain{}, nil
		}
		return nil, err
	}
	var c model.Chain
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save writes the live chain atomically (write temp + rename).
func (s Store) Save(c *model.Chain) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.chainPath() + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.chainPath())
}

// ModTime returns chain.json's mtime (zero when missing). The TUI polls
// it to pick up edits made by CLI commands in another terminal.
func (s Store) ModTime() time.Time {
	st, err := os.Stat(s.chainPath())
	if err != nil {
		return time.Time{}
	}
	return st.ModTime()
}
