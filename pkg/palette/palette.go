// Package palette provides the fixed color tables of the supported canvas
// services.
package palette

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered table mapping small pixel indices to RGB colors.
type Palette []color.RGBA

// At returns the color for index i. Indices wrap around the table, matching
// the 4-bit services that address their 16-entry palette with the low nibble
// only.
func (p Palette) At(i int) color.RGBA {
	return p[i%len(p)]
}

// Background returns the canvas background color. The bigchunk services
// clear unpainted area to entry 1.
func (p Palette) Background() color.RGBA {
	return p.At(1)
}

// ColorPalette converts p to a stdlib color.Palette for use with
// image.Paletted.
func (p Palette) ColorPalette() color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		cp[i] = c
	}
	return cp
}

// FromHex builds a palette from hex color literals, such as the palette a
// board service ships in its metadata.
func FromHex(hexes []string) (Palette, error) {
	if len(hexes) == 0 {
		return nil, fmt.Errorf("palette: empty color list")
	}
	p := make(Palette, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette: entry %d: %w", i, err)
		}
		r, g, b := c.RGB255()
		p[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return p, nil
}

func mustFromHex(hexes ...string) Palette {
	p, err := FromHex(hexes)
	if err != nil {
		panic(err)
	}
	return p
}

// PixelCanvas is the pixelcanvas.io 16-color table. Entry 1 is the light
// gray the service uses for untouched canvas.
var PixelCanvas = mustFromHex(
	"#FFFFFF", "#E4E4E4", "#888888", "#222222",
	"#FFA7D1", "#E50000", "#E59500", "#A06A42",
	"#E5D900", "#94E044", "#02BE01", "#00D3DD",
	"#0083C7", "#0000EA", "#CF6EE4", "#820080",
)

// PixelPlace is the pixelplace.fun 16-color table. The service serves the
// same bigchunk encoding as pixelcanvas but with its own colors.
var PixelPlace = mustFromHex(
	"#FFFFFF", "#C4C4C4", "#888888", "#555555",
	"#222222", "#FFA7D1", "#E50000", "#800000",
	"#E59500", "#A06A42", "#E5D900", "#94E044",
	"#02BE01", "#00D3DD", "#0083C7", "#0000EA",
)

// PixelZone is the pixelzone.io 16-color table.
var PixelZone = mustFromHex(
	"#262626", "#000000", "#FFFFFF", "#B4B4B4",
	"#757575", "#613F2E", "#994E00", "#FF0000",
	"#FF9000", "#FFF32E", "#83C917", "#02BE01",
	"#00D3DD", "#0083C7", "#3A0F9A", "#F05FC6",
)

// Pxls is the pxls.space default table, used for board snapshots when the
// board metadata carries no palette of its own.
var Pxls = mustFromHex(
	"#FFFFFF", "#CDCDCD", "#888888", "#555555",
	"#222222", "#000000", "#FFA7D1", "#E50000",
	"#9A0000", "#FFDFCC", "#E59500", "#A06A42",
	"#604028", "#E5D900", "#94E044", "#02BE01",
	"#005F00", "#00D3DD", "#0083C7", "#0000EA",
	"#030383", "#CF6EE4", "#820080",
)
