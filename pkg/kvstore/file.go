package kvstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// fileStore writes one JSON file per key under a root directory.
type fileStore struct {
	root string
}

func openFile(root string) (*fileStore, error) {
	if !filepath.IsAbs(root) {
		cwd, _ := os.Getwd()
		root = filepath.Join(cwd, root)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("kvstore/file: mkdir %s: %w", root, err)
	}
	return &fileStore{root: root}, nil
}

func (s *fileStore) path(key string) string {
	return filepath.Join(s.root, key+".json")
}

func (s *fileStore) Get(key string, dest interface{}) bool {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (s *fileStore) Put(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kvstore/file: marshal %s: %w", key, err)
	}

	// Write-then-rename so a crash mid-write never leaves a corrupt snapshot.
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("kvstore/file: write %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("kvstore/file: rename %s: %w", key, err)
	}
	return nil
}

func (s *fileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("kvstore/file: delete %s: %w", key, err)
	}
	return nil
}
