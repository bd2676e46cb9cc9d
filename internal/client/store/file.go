package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is a CredentialStore persisted as a JSON object in a single
// file. Every mutation rewrites the file with 0600 permissions. Suitable
// for CLI use; mobile shells would plug in a platform store instead.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// NewFileStore loads the store from path, creating parent directories as
// needed. A missing file yields an empty store.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}

	values := make(map[string]string)
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// first run
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(b, &values); err != nil {
			return nil, err
		}
	}

	return &FileStore{path: path, values: values}, nil
}

func (f *FileStore) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key], nil
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return f.save()
}

func (f *FileStore) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return f.save()
}

func (f *FileStore) save() error {
	b, err := json.Marshal(f.values)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, b, 0o600)
}
