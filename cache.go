package tmx

import (
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/sasha-s/go-deadlock"
)

type cacheEntry struct {
	digest uint64
	m      *TileMap
}

// Cache keeps parsed maps keyed by name and reparses a map only when the
// bytes behind it change. Cached maps are shared between callers and must
// be treated as read-only.
type Cache struct {
	opts []Option

	mutex   deadlock.RWMutex
	entries map[string]cacheEntry
}

// NewCache returns an empty cache that reads maps with opts.
func NewCache(opts ...Option) *Cache {
	return &Cache{
		opts:    opts,
		entries: make(map[string]cacheEntry),
	}
}

// Load returns the map stored at filename, parsing it again only when the
// file's contents differ from the cached copy.
func (c *Cache) Load(filename string) (*TileMap, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	return c.load(filename, data, func() (*TileMap, error) {
		opts := append([]Option{WithRoot(fsRootFor(filename))}, c.opts...)
		return ReadTileMapFromMemory(data, opts...)
	})
}

// LoadMemory is Load for documents that are already in memory.
func (c *Cache) LoadMemory(key string, data []byte) (*TileMap, error) {
	return c.load(key, data, func() (*TileMap, error) {
		return ReadTileMapFromMemory(data, c.opts...)
	})
}

func (c *Cache) load(key string, data []byte, read func() (*TileMap, error)) (*TileMap, error) {
	digest := xxhash.Sum64(data)

	c.mutex.RLock()
	entry, ok := c.entries[key]
	c.mutex.RUnlock()

	if ok && entry.digest == digest {
		return entry.m, nil
	}

	m, err := read()
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	c.entries[key] = cacheEntry{digest: digest, m: m}
	c.mutex.Unlock()

	return m, nil
}

// Forget drops the map cached under key.
func (c *Cache) Forget(key string) {
	c.mutex.Lock()
	delete(c.entries, key)
	c.mutex.Unlock()
}

// Len returns the number of cached maps.
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}
