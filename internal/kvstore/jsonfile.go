package kvstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// JSONFile is a Store backed by a single JSON document on disk.
//
// The document is loaded once at construction and rewritten in full on every
// mutation. This matches the store's usage pattern: a handful of small keys
// written rarely (directory tokens, last-used state).
type JSONFile struct {
	mu   sync.Mutex
	path string
	data []byte
}

// NewJSONFile opens or creates the store at path.
// Missing files are treated as an empty document; the parent directory is
// created if needed.
func NewJSONFile(path string) (*JSONFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("opening state file %s: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating state dir: %w", err)
		}
		data = []byte("{}")
	}
	if len(data) == 0 {
		data = []byte("{}")
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("state file %s is not valid JSON", path)
	}

	return &JSONFile{path: path, data: data}, nil
}

var _ Store = (*JSONFile)(nil)

// Get returns the value for key.
func (j *JSONFile) Get(_ context.Context, key string) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	res := gjson.GetBytes(j.data, escapeKey(key))
	if !res.Exists() {
		return "", ErrKeyNotFound
	}
	return res.String(), nil
}

// Set stores value under key and rewrites the file.
func (j *JSONFile) Set(_ context.Context, key, value string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := sjson.SetBytes(j.data, escapeKey(key), value)
	if err != nil {
		return fmt.Errorf("setting key %q: %w", key, err)
	}
	if err := os.WriteFile(j.path, data, 0o600); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	j.data = data
	return nil
}

// Delete removes key and rewrites the file.
func (j *JSONFile) Delete(_ context.Context, key string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !gjson.GetBytes(j.data, escapeKey(key)).Exists() {
		return ErrKeyNotFound
	}
	data, err := sjson.DeleteBytes(j.data, escapeKey(key))
	if err != nil {
		return fmt.Errorf("deleting key %q: %w", key, err)
	}
	if err := os.WriteFile(j.path, data, 0o600); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	j.data = data
	return nil
}

// escapeKey makes a flat key safe for use as a gjson/sjson path.
// Store keys like "storage.native.root" are single keys, not nested paths.
func escapeKey(key string) string {
	key = strings.ReplaceAll(key, "\\", "\\\\")
	key = strings.ReplaceAll(key, ".", "\\.")
	key = strings.ReplaceAll(key, "*", "\\*")
	key = strings.ReplaceAll(key, "?", "\\?")
	return key
}
