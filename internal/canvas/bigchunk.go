package canvas

import (
	"fmt"

	"github.com/canvas-tiles/mosaic/pkg/palette"
)

const (
	bigChunkSize   = 960
	bigChunkOffset = 448

	subBlockSize  = 64
	subBlockBytes = subBlockSize * subBlockSize / 2
	subBlocksPer  = bigChunkSize / subBlockSize

	bigChunkPayloadLen = subBlocksPer * subBlocksPer * subBlockBytes

	// The services never paint pixels at or past this coordinate in
	// either axis; edge bigchunks are padded with empty sub-blocks there.
	bigChunkCanvasBound = 1_000_000

	bigChunkGridBound = 1043
)

// BigChunk is one 960×960 chunk of a bigchunk-protocol service
// (pixelcanvas.io and pixelplace.fun). The payload is a 15×15 grid of 64×64
// sub-blocks, each 2048 bytes of 4-bit packed palette indices in row-major
// sub-block order. Decoding resolves indices through the service palette,
// so the output raster is RGB.
type BigChunk struct {
	x, y int
	kind Kind
	url  string
	pal  palette.Palette
	tile *Tile
}

// NewBigChunk returns the pixelcanvas.io chunk at grid coordinate (x, y).
func NewBigChunk(x, y int) *BigChunk {
	return &BigChunk{
		x:    x,
		y:    y,
		kind: KindBigChunk,
		url:  fmt.Sprintf("https://pixelcanvas.io/api/bigchunk/%d.%d.bmp", x*subBlocksPer, y*subBlocksPer),
		pal:  palette.PixelCanvas,
	}
}

// NewBigChunkPP returns the pixelplace.fun chunk at grid coordinate (x, y).
// Same geometry and encoding as pixelcanvas, different endpoint and palette.
func NewBigChunkPP(x, y int) *BigChunk {
	return &BigChunk{
		x:    x,
		y:    y,
		kind: KindBigChunkPP,
		url:  fmt.Sprintf("https://pixelplace.fun/api/bigchunk/%d.%d.bmp", x*subBlocksPer, y*subBlocksPer),
		pal:  palette.PixelPlace,
	}
}

func (c *BigChunk) Key() Key {
	return Key{X: c.x, Y: c.y, Kind: c.kind}
}

func (c *BigChunk) PixelOrigin() (int64, int64) {
	return int64(c.x)*bigChunkSize - bigChunkOffset, int64(c.y)*bigChunkSize - bigChunkOffset
}

func (c *BigChunk) TileSize() (int, int, error) {
	return bigChunkSize, bigChunkSize, nil
}

func (c *BigChunk) InBounds() bool {
	return -bigChunkGridBound <= c.x && c.x < bigChunkGridBound &&
		-bigChunkGridBound <= c.y && c.y < bigChunkGridBound
}

func (c *BigChunk) Request() (Request, error) {
	if !c.InBounds() {
		return Request{}, ErrOutOfBounds
	}
	return Request{Kind: RequestHTTP, URL: c.url}, nil
}

func (c *BigChunk) Tile() *Tile {
	return c.tile
}

// Load decodes a bigchunk payload. Sub-blocks whose pixel origin falls
// outside the global canvas bound are skipped in the source and left at the
// background fill; that padding is deliberate, not a decode failure.
func (c *BigChunk) Load(data []byte) error {
	if len(data) != bigChunkPayloadLen {
		return decodeErrf(c.kind.String(), "payload is %d bytes, want %d", len(data), bigChunkPayloadLen)
	}
	px, py := c.PixelOrigin()
	tile := newRGBTile(bigChunkSize, bigChunkSize, c.pal.Background())
	off := 0
	for cy := 0; cy < bigChunkSize; cy += subBlockSize {
		for cx := 0; cx < bigChunkSize; cx += subBlockSize {
			block := data[off : off+subBlockBytes]
			off += subBlockBytes
			if offCanvas(px+int64(cx)) || offCanvas(py+int64(cy)) {
				continue
			}
			pasteSubBlock(tile, cx, cy, block, c.pal)
		}
	}
	c.tile = tile
	return nil
}

func offCanvas(v int64) bool {
	return v < -bigChunkCanvasBound || v >= bigChunkCanvasBound
}

// pasteSubBlock unpacks one 64×64 sub-block of 4-bit indices into the tile
// at local offset (ox, oy), resolving colors through pal.
func pasteSubBlock(t *Tile, ox, oy int, block []byte, pal palette.Palette) {
	i := 0
	for y := 0; y < subBlockSize; y++ {
		row := (oy+y)*t.Width + ox
		for x := 0; x < subBlockSize; x += 2 {
			b := block[i]
			i++
			t.setRGB(row+x, pal.At(int(b>>4)))
			t.setRGB(row+x+1, pal.At(int(b&0x0f)))
		}
	}
}

// IntersectingBigChunks returns every pixelcanvas.io chunk overlapping the
// pixel rectangle at (x, y) with extent (dx, dy), in row-major order, plus
// the resulting grid shape.
func IntersectingBigChunks(x, y, dx, dy int64) ([]Chunk, Grid) {
	x0, y0, x1, y1 := gridRange(x, y, dx, dy, bigChunkSize, bigChunkOffset)
	return emitGrid(x0, y0, x1, y1, func(gx, gy int) Chunk { return NewBigChunk(gx, gy) })
}

// IntersectingBigChunksPP is IntersectingBigChunks for pixelplace.fun.
func IntersectingBigChunksPP(x, y, dx, dy int64) ([]Chunk, Grid) {
	x0, y0, x1, y1 := gridRange(x, y, dx, dy, bigChunkSize, bigChunkOffset)
	return emitGrid(x0, y0, x1, y1, func(gx, gy int) Chunk { return NewBigChunkPP(gx, gy) })
}
