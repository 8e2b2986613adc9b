package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fileBackend stores one JSON file per (project, date) under a base
// directory: <dir>/<project_id>/<YYYY-MM-DD>.json
type fileBackend struct {
	dir string
}

// NewFileBackend creates a file-based backend rooted at dir
func NewFileBackend(dir string) (Backend, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
	}
	return &fileBackend{dir: dir}, nil
}

func (f *fileBackend) path(projectID, date string) string {
	return filepath.Join(f.dir, projectID, date+".json")
}

func (f *fileBackend) Get(projectID, date string) (*Entry, error) {
	data, err := os.ReadFile(f.path(projectID, date))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode cache file: %w", err)
	}
	return &entry, nil
}

func (f *fileBackend) Put(entry *Entry) error {
	dir := filepath.Join(f.dir, entry.ProjectID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create project cache directory: %w", err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	// write-then-rename so a crash never leaves a truncated entry
	tmp := f.path(entry.ProjectID, entry.UsageDate) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, f.path(entry.ProjectID, entry.UsageDate)); err != nil {
		return fmt.Errorf("commit cache file: %w", err)
	}
	return nil
}

func (f *fileBackend) List(projectID string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(f.dir, projectID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list cache directory: %w", err)
	}

	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(name, ".json"))
	}
	return dates, nil
}
