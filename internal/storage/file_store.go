package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// FileKV persists the scope as a single JSON file with 0600 permissions.
// It backs the CLI; mobile shells supply their own platform KV instead.
type FileKV struct {
	mu   sync.Mutex
	path string
}

func NewFileKV(path string) *FileKV {
	_ = os.MkdirAll(filepath.Dir(path), 0o700)
	return &FileKV{path: path}
}

func (f *FileKV) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.load()
	if err != nil {
		return nil, err
	}
	v, ok := m[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (f *FileKV) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.load()
	if err != nil {
		return err
	}
	m[key] = append([]byte(nil), value...)
	return f.flush(m)
}

func (f *FileKV) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return f.flush(m)
}

func (f *FileKV) load() (map[string][]byte, error) {
	b, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string][]byte{}, nil
	}
	if err != nil {
		return nil, err
	}
	m := map[string][]byte{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (f *FileKV) flush(m map[string][]byte) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, b, 0o600)
}
