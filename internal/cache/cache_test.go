package cache

import (
	"bytes"
	"testing"
	"time"

	"github.com/canvas-tiles/mosaic/internal/canvas"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		PayloadCacheSizeMB: 16,
		PayloadTTL:         time.Minute,
		ChunkCacheSize:     8,
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestPayloadCache(t *testing.T) {
	m := newTestManager(t)

	if _, ok := m.GetPayload("http://example.test/chunk"); ok {
		t.Fatal("unexpected hit on empty cache")
	}
	if err := m.SetPayload("http://example.test/chunk", []byte{1, 2, 3}); err != nil {
		t.Fatalf("SetPayload error: %v", err)
	}
	data, ok := m.GetPayload("http://example.test/chunk")
	if !ok || !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Fatalf("GetPayload: got (%v, %v)", data, ok)
	}
}

func TestChunkCache(t *testing.T) {
	m := newTestManager(t)

	key := canvas.Key{X: 3, Y: 4, Kind: canvas.KindBigChunk}
	tile := &canvas.Tile{Width: 1, Height: 1, Mode: canvas.ModeRGB, Pix: []byte{1, 2, 3}}

	if _, ok := m.GetChunk(key); ok {
		t.Fatal("unexpected hit on empty cache")
	}
	m.SetChunk(key, tile)
	got, ok := m.GetChunk(key)
	if !ok || got != tile {
		t.Fatal("chunk cache miss after set")
	}

	// Same coordinate on another service is a different entry.
	other := canvas.Key{X: 3, Y: 4, Kind: canvas.KindChunkPz}
	if _, ok := m.GetChunk(other); ok {
		t.Fatal("keys must not collide across kinds")
	}
}

func TestPayloadKey(t *testing.T) {
	httpKey := PayloadKey(canvas.Request{Kind: canvas.RequestHTTP, URL: "http://a"})
	sockKey := PayloadKey(canvas.Request{Kind: canvas.RequestSocket, Payload: "http://a"})
	if httpKey == sockKey {
		t.Fatal("http and socket requests must not share cache keys")
	}
}
