package canvas

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	_ "image/png" // chunk image format
)

const (
	pziChunkSize   = 500
	pziChunkOffset = 4000
	pziGridBound   = 16
)

// ChunkPzi is one 500×500 chunk of the pixelzone.io image API. The service
// returns a whole PNG per chunk, so decoding delegates to the stdlib image
// decoder and converts to RGB; there is no manual unpacking.
type ChunkPzi struct {
	x, y int
	tile *Tile
}

// NewChunkPzi returns the image-API chunk at grid coordinate (x, y).
func NewChunkPzi(x, y int) *ChunkPzi {
	return &ChunkPzi{x: x, y: y}
}

func (c *ChunkPzi) Key() Key {
	return Key{X: c.x, Y: c.y, Kind: KindChunkPzi}
}

func (c *ChunkPzi) PixelOrigin() (int64, int64) {
	return int64(c.x)*pziChunkSize - pziChunkOffset, int64(c.y)*pziChunkSize - pziChunkOffset
}

func (c *ChunkPzi) TileSize() (int, int, error) {
	return pziChunkSize, pziChunkSize, nil
}

func (c *ChunkPzi) InBounds() bool {
	return 0 <= c.x && c.x < pziGridBound && 0 <= c.y && c.y < pziGridBound
}

func (c *ChunkPzi) Request() (Request, error) {
	if !c.InBounds() {
		return Request{}, ErrOutOfBounds
	}
	return Request{
		Kind: RequestHTTP,
		URL:  fmt.Sprintf("https://pixelzone.io/api/chunk/%d.%d.png", c.x, c.y),
	}, nil
}

func (c *ChunkPzi) Tile() *Tile {
	return c.tile
}

func (c *ChunkPzi) Load(data []byte) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return &DecodeError{Stage: "image", Err: err}
	}
	b := img.Bounds()
	if b.Dx() != pziChunkSize || b.Dy() != pziChunkSize {
		return decodeErrf("image", "chunk image is %d×%d, want %d×%d", b.Dx(), b.Dy(), pziChunkSize, pziChunkSize)
	}

	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(image.Rect(0, 0, pziChunkSize, pziChunkSize))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	tile := &Tile{
		Width:  pziChunkSize,
		Height: pziChunkSize,
		Mode:   ModeRGB,
		Pix:    make([]byte, pziChunkSize*pziChunkSize*3),
	}
	for y := 0; y < pziChunkSize; y++ {
		for x := 0; x < pziChunkSize; x++ {
			o := rgba.PixOffset(rgba.Bounds().Min.X+x, rgba.Bounds().Min.Y+y)
			i := (y*pziChunkSize + x) * 3
			tile.Pix[i] = rgba.Pix[o]
			tile.Pix[i+1] = rgba.Pix[o+1]
			tile.Pix[i+2] = rgba.Pix[o+2]
		}
	}
	c.tile = tile
	return nil
}

// IntersectingChunksPzi returns every image-API chunk overlapping the pixel
// rectangle at (x, y) with extent (dx, dy), row-major, plus the grid shape.
func IntersectingChunksPzi(x, y, dx, dy int64) ([]Chunk, Grid) {
	x0, y0, x1, y1 := gridRange(x, y, dx, dy, pziChunkSize, pziChunkOffset)
	return emitGrid(x0, y0, x1, y1, func(gx, gy int) Chunk { return NewChunkPzi(gx, gy) })
}
