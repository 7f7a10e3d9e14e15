package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps the leaderboard in memory and rewrites a JSON file, keyed
// by player name, after every recorded game.
type FileStore struct {
	path string

	mu      sync.Mutex
	entries map[string]Entry
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, entries: map[string]Entry{}}
}

// Load replaces the in-memory set with the file's contents. A missing file is
// an empty leaderboard; a corrupt one also leaves the set empty but is
// reported.
func (s *FileStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = map[string]Entry{}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read leaderboard file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var loaded map[string]Entry
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to parse leaderboard file: %w", err)
	}
	for name, e := range loaded {
		e.PlayerName = name
		s.entries[name] = e
	}
	return nil
}

// Record applies deltas and rewrites the file. If the write fails the
// in-memory set is left as it was.
func (s *FileStore) Record(ctx context.Context, at time.Time, deltas []Delta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]Entry, len(s.entries)+len(deltas))
	for k, v := range s.entries {
		next[k] = v
	}
	for _, d := range deltas {
		next[d.PlayerName] = next[d.PlayerName].apply(d, at)
	}

	if err := s.write(next); err != nil {
		return err
	}
	s.entries = next
	return nil
}

func (s *FileStore) write(entries map[string]Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".leaderboard-*.json")
	if err != nil {
		return fmt.Errorf("failed to write leaderboard file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write leaderboard file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write leaderboard file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace leaderboard file: %w", err)
	}
	return nil
}

func (s *FileStore) Top(ctx context.Context, n int) ([]Entry, error) {
	s.mu.Lock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.Unlock()

	sortEntries(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
