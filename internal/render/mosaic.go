// Package render assembles decoded chunk tiles into a single mosaic image
// using fogleman/gg.
package render

import (
	"bytes"
	"image/color"
	"image/png"
	"sync"

	"github.com/fogleman/gg"

	"github.com/canvas-tiles/mosaic/internal/canvas"
)

// Placed is one decoded tile positioned in canvas pixel space.
type Placed struct {
	X, Y int64
	Tile *canvas.Tile
}

// Compositor pastes placed tiles into a mosaic and encodes it as PNG.
type Compositor struct {
	bufferPool sync.Pool
}

// NewCompositor creates a compositor.
func NewCompositor() *Compositor {
	return &Compositor{
		bufferPool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 64*1024))
			},
		},
	}
}

// Compose renders a width×height mosaic whose top-left pixel sits at
// (originX, originY) in canvas space and returns the encoded PNG. Tile
// footprints within one tiling pass are disjoint, so paste order does not
// matter; missing tiles (failed or skipped chunks) leave the background
// visible.
func (c *Compositor) Compose(originX, originY int64, width, height int, tiles []Placed) ([]byte, error) {
	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	for _, p := range tiles {
		if p.Tile == nil {
			continue
		}
		dc.DrawImage(p.Tile.Image(), int(p.X-originX), int(p.Y-originY))
	}

	return c.encodeContext(dc)
}

func (c *Compositor) encodeContext(dc *gg.Context) ([]byte, error) {
	buf := c.bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		c.bufferPool.Put(buf)
	}()

	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(buf, dc.Image()); err != nil {
		return nil, err
	}

	// Copy out; the buffer is reused.
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}
