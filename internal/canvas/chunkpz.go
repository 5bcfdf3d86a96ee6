package canvas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/canvas-tiles/mosaic/internal/lzstring"
	"github.com/canvas-tiles/mosaic/pkg/palette"
)

const (
	pzChunkSize   = 512
	pzChunkOffset = 4096
	pzGridBound   = 16
	pzPackedBytes = pzChunkSize * pzChunkSize / 2
)

// ChunkPz is one 512×512 pixelzone.io chunk. The service transports chunk
// data as text inside a socket message: an LZString base64 string wrapping
// a JSON byte array wrapping an LZ4 frame of 4-bit packed palette indices.
// The decode stages must run in exactly that order. Output stays indexed
// with the palette attached.
type ChunkPz struct {
	x, y int
	tile *Tile
}

// NewChunkPz returns the pixelzone.io chunk at grid coordinate (x, y).
func NewChunkPz(x, y int) *ChunkPz {
	return &ChunkPz{x: x, y: y}
}

func (c *ChunkPz) Key() Key {
	return Key{X: c.x, Y: c.y, Kind: KindChunkPz}
}

func (c *ChunkPz) PixelOrigin() (int64, int64) {
	return int64(c.x)*pzChunkSize - pzChunkOffset, int64(c.y)*pzChunkSize - pzChunkOffset
}

func (c *ChunkPz) TileSize() (int, int, error) {
	return pzChunkSize, pzChunkSize, nil
}

func (c *ChunkPz) InBounds() bool {
	return 0 <= c.x && c.x < pzGridBound && 0 <= c.y && c.y < pzGridBound
}

// Request returns the socket message requesting this chunk. The payload is
// service-defined and must reach the socket verbatim.
func (c *ChunkPz) Request() (Request, error) {
	if !c.InBounds() {
		return Request{}, ErrOutOfBounds
	}
	return Request{
		Kind:    RequestSocket,
		Payload: fmt.Sprintf(`42["r", {"cx": %d, "cy": %d}]`, c.x, c.y),
	}, nil
}

func (c *ChunkPz) Tile() *Tile {
	return c.tile
}

func (c *ChunkPz) Load(data []byte) error {
	text, err := lzstring.DecompressFromBase64(string(data))
	if err != nil {
		return &DecodeError{Stage: "lzstring", Err: err}
	}

	// The recovered text is a bare comma-separated byte list; brackets
	// turn it into a JSON array.
	var vals []int
	if err := json.Unmarshal([]byte("["+text+"]"), &vals); err != nil {
		return &DecodeError{Stage: "json", Err: err}
	}
	buf := make([]byte, len(vals))
	for i, v := range vals {
		if v < 0 || v > 255 {
			return decodeErrf("json", "element %d is %d, outside byte range", i, v)
		}
		buf[i] = byte(v)
	}

	packed, err := io.ReadAll(lz4.NewReader(bytes.NewReader(buf)))
	if err != nil {
		return &DecodeError{Stage: "lz4", Err: err}
	}
	if len(packed) != pzPackedBytes {
		return decodeErrf("lz4", "frame holds %d bytes, want %d", len(packed), pzPackedBytes)
	}

	tile, err := newIndexedTile("unpack", pzChunkSize, pzChunkSize, unpack4bit(packed), palette.PixelZone)
	if err != nil {
		return err
	}
	c.tile = tile
	return nil
}

// IntersectingChunksPz returns every pixelzone.io chunk overlapping the
// pixel rectangle at (x, y) with extent (dx, dy), row-major, plus the grid
// shape.
func IntersectingChunksPz(x, y, dx, dy int64) ([]Chunk, Grid) {
	x0, y0, x1, y1 := gridRange(x, y, dx, dy, pzChunkSize, pzChunkOffset)
	return emitGrid(x0, y0, x1, y1, func(gx, gy int) Chunk { return NewChunkPz(gx, gy) })
}
