// Package cache provides caching for decoded chunk tiles and raw chunk
// payloads.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/canvas-tiles/mosaic/internal/canvas"
)

// Config contains cache configuration.
type Config struct {
	PayloadCacheSizeMB int
	PayloadTTL         time.Duration
	ChunkCacheSize     int
}

// Manager manages the payload and chunk caches. Payloads are raw transport
// bytes with a TTL; chunks are decoded tiles keyed by their grid identity.
type Manager struct {
	payloadCache *bigcache.BigCache
	chunkCache   *lru.Cache[canvas.Key, *canvas.Tile]
}

// NewManager creates a new cache manager.
func NewManager(cfg Config) (*Manager, error) {
	payloadConfig := bigcache.Config{
		Shards:             1024,
		LifeWindow:         cfg.PayloadTTL,
		CleanWindow:        cfg.PayloadTTL / 2,
		MaxEntriesInWindow: 10000,
		MaxEntrySize:       512 * 1024, // an uncompressed bigchunk payload is 450KB
		HardMaxCacheSize:   cfg.PayloadCacheSizeMB,
		Verbose:            false,
	}

	payloadCache, err := bigcache.New(context.Background(), payloadConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create payload cache: %w", err)
	}

	chunkCache, err := lru.New[canvas.Key, *canvas.Tile](cfg.ChunkCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunk cache: %w", err)
	}

	return &Manager{
		payloadCache: payloadCache,
		chunkCache:   chunkCache,
	}, nil
}

// GetPayload retrieves raw payload bytes from cache.
func (m *Manager) GetPayload(key string) ([]byte, bool) {
	data, err := m.payloadCache.Get(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetPayload stores raw payload bytes in cache.
func (m *Manager) SetPayload(key string, data []byte) error {
	return m.payloadCache.Set(key, data)
}

// GetChunk retrieves a decoded tile from cache.
func (m *Manager) GetChunk(key canvas.Key) (*canvas.Tile, bool) {
	return m.chunkCache.Get(key)
}

// SetChunk stores a decoded tile in cache.
func (m *Manager) SetChunk(key canvas.Key, tile *canvas.Tile) {
	m.chunkCache.Add(key, tile)
}

// PayloadKey generates a cache key for a request descriptor.
func PayloadKey(req canvas.Request) string {
	if req.Kind == canvas.RequestSocket {
		return "sock:" + req.Payload
	}
	return "http:" + req.URL
}

// Stats returns cache statistics.
func (m *Manager) Stats() map[string]interface{} {
	return map[string]interface{}{
		"payload_cache_len": m.payloadCache.Len(),
		"payload_cache_cap": m.payloadCache.Capacity(),
		"chunk_cache_len":   m.chunkCache.Len(),
	}
}

// Close closes the cache manager.
func (m *Manager) Close() error {
	return m.payloadCache.Close()
}
