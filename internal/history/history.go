// Package history persists the most recent successful query results.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/KaramelBytes/pandacode-cli/internal/runner"
	"github.com/KaramelBytes/pandacode-cli/internal/utils"
)

const (
	fileName     = "history.json"
	DefaultLimit = 15
)

// Store is a newest-first list of results kept in <dir>/history.json.
type Store struct {
	path   string
	limit  int
	logger *slog.Logger
	mu     sync.Mutex
}

// Open returns a store rooted at dir. The file is created lazily.
func Open(dir string, limit int, logger *slog.Logger) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{path: filepath.Join(dir, fileName), limit: limit, logger: logger}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// List returns the stored entries, newest first. A missing or unreadable file
// yields an empty list.
func (s *Store) List() []*runner.QueryResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add prepends r and trims the list to the limit.
func (s *Store) Add(r *runner.QueryResult) error {
	if r == nil {
		return errors.New("nil result")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := append([]*runner.QueryResult{r}, s.load()...)
	return s.save(entries)
}

// Clear empties the history.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(nil)
}

func (s *Store) load() []*runner.QueryResult {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("read history", "path", s.path, "error", err)
		}
		return []*runner.QueryResult{}
	}
	var entries []*runner.QueryResult
	if err := json.Unmarshal(b, &entries); err != nil {
		s.logger.Warn("history file is corrupt, starting empty", "path", s.path, "error", err)
		return []*runner.QueryResult{}
	}
	if entries == nil {
		entries = []*runner.QueryResult{}
	}
	return entries
}

func (s *Store) save(entries []*runner.QueryResult) error {
	if entries == nil {
		entries = []*runner.QueryResult{}
	}
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}
	data, err := utils.PrettyJSON(entries)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(s.path, data); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
