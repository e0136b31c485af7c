package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/google/uuid"
)

// DetailCache keeps serialized event details in process memory. A nil cache
// is valid and never hits.
//
// Every invalidation bumps generation. A reader captures the generation
// before loading from the database and its result is only stored if no
// invalidation happened in between.
type DetailCache struct {
	store *bigcache.BigCache

	mu         sync.Mutex
	generation uint64
}

// NewDetailCache builds a cache whose entries expire after ttl. A non-positive
// ttl disables caching.
func NewDetailCache(ctx context.Context, ttl time.Duration) (*DetailCache, error) {
	if ttl <= 0 {
		return nil, nil
	}
	cfg := bigcache.DefaultConfig(ttl)
	cfg.CleanWindow = ttl / 2
	cfg.Verbose = false
	store, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &DetailCache{store: store}, nil
}

func (c *DetailCache) get(id uuid.UUID) (*EventDTO, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.store.Get(id.String())
	if err != nil {
		return nil, false
	}
	var dto EventDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		_ = c.store.Delete(id.String())
		return nil, false
	}
	return &dto, true
}

// snapshot returns the generation a subsequent set must match.
func (c *DetailCache) snapshot() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// set stores dto without its clock-dependent countdown. It is a no-op when an
// invalidation happened after gen was taken.
func (c *DetailCache) set(dto *EventDTO, gen uint64) {
	if c == nil || dto == nil {
		return
	}
	stored := *dto
	stored.ComingDay = ""
	data, err := json.Marshal(stored)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	_ = c.store.Set(dto.ID.String(), data)
}

func (c *DetailCache) invalidate(id uuid.UUID) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	_ = c.store.Delete(id.String())
}

// Close releases the cache's background cleaner.
func (c *DetailCache) Close() error {
	if c == nil {
		return nil
	}
	return c.store.Close()
}
