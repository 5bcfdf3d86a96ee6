package canvas

import (
	"image"
	"image/color"

	"github.com/canvas-tiles/mosaic/pkg/palette"
)

// Mode is the pixel layout of a decoded tile.
type Mode int

const (
	// ModeRGB stores three bytes per pixel, palette already resolved.
	ModeRGB Mode = iota
	// ModeIndexed stores one palette index byte per pixel; the tile
	// carries its palette.
	ModeIndexed
)

func (m Mode) bytesPerPixel() int {
	if m == ModeRGB {
		return 3
	}
	return 1
}

// Tile is the decoded raster for one chunk.
type Tile struct {
	Width  int
	Height int
	Mode   Mode
	Pix    []byte
	// Palette backs ModeIndexed tiles; nil for ModeRGB.
	Palette palette.Palette
}

// newRGBTile returns an RGB tile cleared to the given color.
func newRGBTile(w, h int, bg color.RGBA) *Tile {
	pix := make([]byte, w*h*3)
	for i := 0; i < len(pix); i += 3 {
		pix[i] = bg.R
		pix[i+1] = bg.G
		pix[i+2] = bg.B
	}
	return &Tile{Width: w, Height: h, Mode: ModeRGB, Pix: pix}
}

// newIndexedTile wraps a raw index buffer, strictly validating its length
// against the tile geometry. A mismatch is a decode failure, never a silent
// truncation.
func newIndexedTile(stage string, w, h int, pix []byte, pal palette.Palette) (*Tile, error) {
	if len(pix) != w*h {
		return nil, decodeErrf(stage, "raster is %d bytes, want %d (%d×%d indexed)", len(pix), w*h, w, h)
	}
	return &Tile{Width: w, Height: h, Mode: ModeIndexed, Pix: pix, Palette: pal}, nil
}

// setRGB writes one resolved pixel. i is the pixel index, not a byte offset.
func (t *Tile) setRGB(i int, c color.RGBA) {
	o := i * 3
	t.Pix[o] = c.R
	t.Pix[o+1] = c.G
	t.Pix[o+2] = c.B
}

// Image converts the tile to a stdlib image for compositing.
func (t *Tile) Image() image.Image {
	r := image.Rect(0, 0, t.Width, t.Height)
	if t.Mode == ModeIndexed {
		img := image.NewPaletted(r, t.Palette.ColorPalette())
		copy(img.Pix, t.Pix)
		return img
	}
	img := image.NewRGBA(r)
	for i := 0; i < t.Width*t.Height; i++ {
		img.Pix[i*4] = t.Pix[i*3]
		img.Pix[i*4+1] = t.Pix[i*3+1]
		img.Pix[i*4+2] = t.Pix[i*3+2]
		img.Pix[i*4+3] = 0xff
	}
	return img
}

// unpack4bit expands two-pixels-per-byte packed palette indices into one
// byte per pixel, high nibble first.
func unpack4bit(packed []byte) []byte {
	out := make([]byte, len(packed)*2)
	for i, b := range packed {
		out[2*i] = b >> 4
		out[2*i+1] = b & 0x0f
	}
	return out
}
