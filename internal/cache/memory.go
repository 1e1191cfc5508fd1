package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process cache with per-item expiration
type Memory struct {
	items *gocache.Cache
}

// NewMemory creates an empty in-process cache. Expired items are purged every
// cleanupInterval; a non-positive interval disables the purge and expired
// items are only skipped on read.
func NewMemory(cleanupInterval time.Duration) *Memory {
	return &Memory{
		items: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// Get retrieves an unexpired item by key
func (c *Memory) Get(_ context.Context, key string) ([]byte, error) {
	v, found := c.items.Get(key)
	if !found {
		return nil, ErrCacheMiss
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}

// Set stores value under key until ttl elapses. A non-positive ttl never expires.
func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.items.Set(key, value, ttl)
	return nil
}

// Cleanup removes expired items
func (c *Memory) Cleanup() {
	c.items.DeleteExpired()
}

// Len reports how many items are held, including expired ones not yet purged
func (c *Memory) Len() int {
	return c.items.ItemCount()
}

// Close drops every item
func (c *Memory) Close() error {
	c.items.Flush()
	return nil
}
