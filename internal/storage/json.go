package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONBackend stores documents in a single JSON file. It serves as the
// local fallback namespace: device-local state documents always live here,
// and it absorbs writes when the primary backend fails.
type JSONBackend struct {
	notifier
	mu   sync.Mutex
	path string
	docs map[string]json.RawMessage
}

func NewJSONBackend(path string) *JSONBackend {
	return &JSONBackend{path: path}
}

func (s *JSONBackend) Name() string { return "json" }

func (s *JSONBackend) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	s.docs = make(map[string]json.RawMessage)
	return s.save()
}

func (s *JSONBackend) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// The fallback store starts empty rather than failing; the
			// primary backend gates initialization.
			s.docs = make(map[string]json.RawMessage)
			return nil
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.docs = make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &s.docs); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	return nil
}

func (s *JSONBackend) Close() error { return nil }

func (s *JSONBackend) save() error {
	data, err := json.MarshalIndent(s.docs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONBackend) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs == nil {
		return nil, false, fmt.Errorf("storage not loaded")
	}
	doc, ok := s.docs[key]
	if !ok {
		return nil, false, nil
	}
	return doc, true, nil
}

func (s *JSONBackend) Set(key string, value []byte) error {
	s.mu.Lock()
	if s.docs == nil {
		s.docs = make(map[string]json.RawMessage)
	}
	s.docs[key] = json.RawMessage(value)
	err := s.save()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify(key)
	return nil
}

func (s *JSONBackend) Delete(key string) error {
	s.mu.Lock()
	if s.docs == nil {
		s.mu.Unlock()
		return fmt.Errorf("storage not loaded")
	}
	delete(s.docs, key)
	err := s.save()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify(key)
	return nil
}

func (s *JSONBackend) Watch(fn func(key string)) func() {
	return s.subscribe(fn)
}

// GetPath returns the backing file path.
func (s *JSONBackend) GetPath() string { return s.path }
