package storage

import (
	"context"
	"strings"
	"sync"
)

// StubObject is an object held by StubObjectStorage
type StubObject struct {
	Data        []byte
	ContentType string
}

// StubObjectStorage keeps objects in memory. It backs local development
// when no bucket is configured and is used by tests.
type StubObjectStorage struct {
	// BaseURL prefixes public URLs. Defaults to "http://localhost:8080/uploads".
	BaseURL string

	mu      sync.RWMutex
	objects map[string]StubObject
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "http://localhost:8080/uploads",
		objects: make(map[string]StubObject),
	}
}

// Upload stores a copy of data under key
func (s *StubObjectStorage) Upload(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = StubObject{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

// DeleteObject removes key
func (s *StubObjectStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// PublicURL returns BaseURL joined with key
func (s *StubObjectStorage) PublicURL(key string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.TrimLeft(key, "/")
}

// KeyFromURL returns the object key behind a URL produced by PublicURL
func (s *StubObjectStorage) KeyFromURL(u string) (string, bool) {
	return keyFromURL(strings.TrimRight(s.BaseURL, "/"), u)
}

// Object returns the stored object for key
func (s *StubObjectStorage) Object(key string) (StubObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	return o, ok
}

// Len returns the number of stored objects
func (s *StubObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
