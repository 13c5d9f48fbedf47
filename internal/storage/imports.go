package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"wellness-meal-planner/internal/recipe"
)

// ImportStore keeps recipes imported from the web or Ghost in a single JSON
// file. They are merged into the built-in catalog at start-up.
type ImportStore struct {
	path string
}

// NewImportStore creates a new ImportStore backed by path.
func NewImportStore(path string) *ImportStore {
	return &ImportStore{path: path}
}

// Load returns the imported recipes. A missing file is an empty list.
func (s *ImportStore) Load() ([]recipe.Recipe, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read imports file: %w", err)
	}

	var recs []recipe.Recipe
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal imports file %s: %w", s.path, err)
	}
	return recs, nil
}

// Save adds rec, replacing any import with the same id. It reports whether
// the id was new.
func (s *ImportStore) Save(rec recipe.Recipe) (bool, error) {
	recs, err := s.Load()
	if err != nil {
		return false, err
	}

	added := true
	for i := range recs {
		if recs[i].ID == rec.ID {
			recs[i] = rec
			added = false
			break
		}
	}
	if added {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })

	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to marshal imports: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return false, fmt.Errorf("failed to create imports directory: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return false, err
	}
	return added, nil
}

// Remove deletes the import with id. Unknown ids are not an error.
func (s *ImportStore) Remove(id string) error {
	recs, err := s.Load()
	if err != nil {
		return err
	}
	kept := recs[:0]
	for _, r := range recs {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(recs) {
		return nil
	}
	data, err := json.MarshalIndent(kept, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal imports: %w", err)
	}
	return writeFileAtomic(s.path, data)
}
