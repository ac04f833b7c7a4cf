package cache

import (
	"context"
	"sync"
	"time"

	"github.com/wayfarer/backend/internal/domain/place"
)

type entry struct {
	details   place.Details
	expiresAt time.Time
}

// InMemoryPlaceDetailsCache implements PlaceDetailsCache with a local map.
// Suitable for single-instance deployments and tests.
type InMemoryPlaceDetailsCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	now       func() time.Time
}

var _ PlaceDetailsCache = (*InMemoryPlaceDetailsCache)(nil)

// NewInMemoryPlaceDetailsCache creates the cache and starts a background
// goroutine that prunes expired entries. Call Close to stop it.
func NewInMemoryPlaceDetailsCache() *InMemoryPlaceDetailsCache {
	c := &InMemoryPlaceDetailsCache{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
		now:      time.Now,
	}

	c.wg.Add(1)
	go c.cleanupLoop(5 * time.Minute)

	return c
}

// Get returns a copy of the cached details
func (c *InMemoryPlaceDetailsCache) Get(_ context.Context, placeID string) (*place.Details, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[placeID]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false, nil
	}
	d := e.details
	d.Types = append([]string(nil), e.details.Types...)
	return &d, true, nil
}

// Set stores a copy of details for ttl
func (c *InMemoryPlaceDetailsCache) Set(_ context.Context, details *place.Details, ttl time.Duration) error {
	if details == nil || details.PlaceID == "" || ttl <= 0 {
		return nil
	}
	d := *details
	d.Types = append([]string(nil), details.Types...)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[d.PlaceID] = entry{details: d, expiresAt: c.now().Add(ttl)}
	return nil
}

// Delete evicts placeID
func (c *InMemoryPlaceDetailsCache) Delete(_ context.Context, placeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, placeID)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryPlaceDetailsCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryPlaceDetailsCache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryPlaceDetailsCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
		}
	}
}

// Size returns the number of stored entries, expired ones included
func (c *InMemoryPlaceDetailsCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
