// Package service orchestrates one snapshot pass: tile a pixel rectangle
// into chunks, fetch and decode them concurrently, and hand the decoded
// tiles to the renderer.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/canvas-tiles/mosaic/internal/cache"
	"github.com/canvas-tiles/mosaic/internal/canvas"
	"github.com/canvas-tiles/mosaic/internal/render"
)

// CanvasID names a supported canvas service.
type CanvasID string

const (
	PixelCanvas    CanvasID = "pixelcanvas"
	PixelPlace     CanvasID = "pixelplace"
	PixelZone      CanvasID = "pixelzone"
	PixelZoneImage CanvasID = "pixelzone-img"
	Pxls           CanvasID = "pxls"
)

// Canvases lists every supported canvas id.
func Canvases() []CanvasID {
	return []CanvasID{PixelCanvas, PixelPlace, PixelZone, PixelZoneImage, Pxls}
}

// Transport fetches raw payload bytes for a request descriptor.
type Transport interface {
	Fetch(ctx context.Context, req canvas.Request) ([]byte, error)
}

// Config contains snapshot service configuration.
type Config struct {
	Transport   Transport
	Cache       *cache.Manager
	Concurrency int
}

// Service fetches and decodes chunk sets.
type Service struct {
	transport   Transport
	cache       *cache.Manager
	concurrency int
}

// New creates a snapshot service.
func New(cfg Config) *Service {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Service{
		transport:   cfg.Transport,
		cache:       cfg.Cache,
		concurrency: concurrency,
	}
}

// Snapshot is the result of one pass. Chunks keeps the tiler's row-major
// order; Tiles holds the decoded raster per chunk; Failed records per-chunk
// errors. A chunk missing from both maps was never attempted.
type Snapshot struct {
	Chunks []canvas.Chunk
	Grid   canvas.Grid
	Tiles  map[canvas.Key]*canvas.Tile
	Failed map[canvas.Key]error
}

// Placed positions every decoded tile in canvas pixel space for the
// compositor, preserving chunk order.
func (sn *Snapshot) Placed() []render.Placed {
	placed := make([]render.Placed, 0, len(sn.Tiles))
	for _, ch := range sn.Chunks {
		tile, ok := sn.Tiles[ch.Key()]
		if !ok {
			continue
		}
		px, py := ch.PixelOrigin()
		placed = append(placed, render.Placed{X: px, Y: py, Tile: tile})
	}
	return placed
}

// Snapshot tiles the rectangle at (x, y) with extent (dx, dy) on the given
// canvas and fetches and decodes every in-bounds chunk. Chunk failures are
// recorded, not propagated: one bad chunk never aborts its siblings.
func (s *Service) Snapshot(ctx context.Context, id CanvasID, x, y, dx, dy int64) (*Snapshot, error) {
	var chunks []canvas.Chunk
	var grid canvas.Grid
	switch id {
	case PixelCanvas:
		chunks, grid = canvas.IntersectingBigChunks(x, y, dx, dy)
	case PixelPlace:
		chunks, grid = canvas.IntersectingBigChunksPP(x, y, dx, dy)
	case PixelZone:
		chunks, grid = canvas.IntersectingChunksPz(x, y, dx, dy)
	case PixelZoneImage:
		chunks, grid = canvas.IntersectingChunksPzi(x, y, dx, dy)
	case Pxls:
		return nil, fmt.Errorf("service: %s is a bounded board, use SnapshotBoard", id)
	default:
		return nil, fmt.Errorf("service: unknown canvas %q", id)
	}

	snap := &Snapshot{
		Chunks: chunks,
		Grid:   grid,
		Tiles:  make(map[canvas.Key]*canvas.Tile, len(chunks)),
		Failed: make(map[canvas.Key]error),
	}

	jobs := make(chan canvas.Chunk)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ch := range jobs {
				tile, err := s.loadChunk(ctx, ch)
				mu.Lock()
				if err != nil {
					snap.Failed[ch.Key()] = err
				} else {
					snap.Tiles[ch.Key()] = tile
				}
				mu.Unlock()
			}
		}()
	}

	for _, ch := range chunks {
		if !ch.InBounds() {
			snap.Failed[ch.Key()] = canvas.ErrOutOfBounds
			continue
		}
		jobs <- ch
	}
	close(jobs)
	wg.Wait()

	return snap, ctx.Err()
}

func (s *Service) loadChunk(ctx context.Context, ch canvas.Chunk) (*canvas.Tile, error) {
	key := ch.Key()
	if s.cache != nil {
		if tile, ok := s.cache.GetChunk(key); ok {
			return tile, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req, err := ch.Request()
	if err != nil {
		return nil, err
	}
	data, err := s.transport.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s(%d,%d): %w", key.Kind, key.X, key.Y, err)
	}
	if err := ch.Load(data); err != nil {
		return nil, err
	}

	tile := ch.Tile()
	if s.cache != nil {
		s.cache.SetChunk(key, tile)
	}
	return tile, nil
}

// SnapshotBoard fetches a bounded board as a single resource: the metadata
// endpoint first, then the raw board dump.
func (s *Service) SnapshotBoard(ctx context.Context, infoURL, dataURL string) (*Snapshot, error) {
	board := canvas.NewBoard()

	infoBytes, err := s.transport.Fetch(ctx, canvas.Request{Kind: canvas.RequestHTTP, URL: infoURL})
	if err != nil {
		return nil, fmt.Errorf("service: board info: %w", err)
	}
	var info canvas.BoardInfo
	if err := json.Unmarshal(infoBytes, &info); err != nil {
		return nil, fmt.Errorf("service: board info: %w", err)
	}
	if err := board.SetInfo(info); err != nil {
		return nil, err
	}

	chunks, grid := board.Intersecting(0, 0, 0, 0)
	snap := &Snapshot{
		Chunks: chunks,
		Grid:   grid,
		Tiles:  make(map[canvas.Key]*canvas.Tile, 1),
		Failed: make(map[canvas.Key]error),
	}

	data, err := s.transport.Fetch(ctx, canvas.Request{Kind: canvas.RequestHTTP, URL: dataURL})
	if err != nil {
		snap.Failed[board.Key()] = err
		return snap, nil
	}
	if err := board.Load(data); err != nil {
		snap.Failed[board.Key()] = err
		return snap, nil
	}
	snap.Tiles[board.Key()] = board.Tile()
	return snap, nil
}
