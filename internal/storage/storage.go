package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore keeps planner state as one JSON file per (kind, key) in a
// directory.
type FileStore struct {
	basePath string
}

// NewFileStore creates a new FileStore and ensures the base directory exists.
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &FileStore{basePath: basePath}, nil
}

// sanitizeKey makes a key safe for filenames. Telegram keys contain ':'.
func sanitizeKey(key string) string {
	return url.QueryEscape(key)
}

func (s *FileStore) path(kind, key string) string {
	if key == "" {
		return filepath.Join(s.basePath, kind+".json")
	}
	return filepath.Join(s.basePath, fmt.Sprintf("%s_%s.json", kind, sanitizeKey(key)))
}

// Get returns the stored blob, or nil if the file does not exist.
func (s *FileStore) Get(_ context.Context, kind, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(kind, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	return data, nil
}

// Put replaces the blob. The file is written next to its target and renamed
// so readers never see a partial write.
func (s *FileStore) Put(_ context.Context, kind, key string, data []byte) error {
	return writeFileAtomic(s.path(kind, key), data)
}

// Keys lists the keys stored for kind, sorted.
func (s *FileStore) Keys(_ context.Context, kind string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, kind+"_*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob state files: %w", err)
	}
	var keys []string
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), kind+"_"), ".json")
		key, err := url.QueryUnescape(name)
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
