// Package backlog maintains the legacy flat-file record of classified
// emails, partitioned into one JSON-array file per category.
package backlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sentimatrix/sentimatrix/internal/domain"
)

const (
	negativeFile = "serious_emails.json"
	positiveFile = "positive_emails.json"
)

// Store appends entries to the category-partitioned backup logs. Each
// append reads the current log, appends the entry, and rewrites the whole
// file; a per-log mutex serializes the read-modify-write cycle so that
// concurrent appends cannot lose entries.
type Store struct {
	dir   string
	locks map[domain.Category]*sync.Mutex
}

var _ domain.BackupLog = (*Store)(nil)

// NewStore creates a store rooted at dir. The log files are created lazily
// on first append.
func NewStore(dir string) *Store {
	return &Store{
		dir: dir,
		locks: map[domain.Category]*sync.Mutex{
			domain.CategoryPositive: {},
			domain.CategoryNegative: {},
		},
	}
}

// Append writes the entry to the log selected by category.
func (s *Store) Append(ctx context.Context, category domain.Category, entry domain.ProcessedEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock, ok := s.locks[category]
	if !ok {
		return fmt.Errorf("unknown category %q", category)
	}

	lock.Lock()
	defer lock.Unlock()

	path := s.pathFor(category)

	entries, err := readEntries(path)
	if err != nil {
		return err
	}

	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode backup log %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write backup log %s: %w", path, err)
	}

	return nil
}

// Entries returns the current contents of one category's log, oldest first.
func (s *Store) Entries(category domain.Category) ([]domain.ProcessedEmail, error) {
	lock, ok := s.locks[category]
	if !ok {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	lock.Lock()
	defer lock.Unlock()

	return readEntries(s.pathFor(category))
}

func (s *Store) pathFor(category domain.Category) string {
	name := positiveFile
	if category == domain.CategoryNegative {
		name = negativeFile
	}
	return filepath.Join(s.dir, name)
}

func readEntries(path string) ([]domain.ProcessedEmail, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup log %s: %w", path, err)
	}

	var entries []domain.ProcessedEmail
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode backup log %s: %w", path, err)
	}
	return entries, nil
}
