package canvas

import (
	"fmt"

	"github.com/canvas-tiles/mosaic/pkg/palette"
)

// BoardInfo is the runtime metadata of a bounded single-board canvas
// (pxls.space style). The service publishes it as JSON next to the board
// data endpoint; it must be supplied before the board can be sized or
// decoded.
type BoardInfo struct {
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Palette []string `json:"palette,omitempty"`
}

// Board is a whole bounded canvas fetched as a single resource rather than
// per-chunk. It behaves as the one chunk covering the entire board: origin
// (0,0), always in bounds, no per-chunk request.
type Board struct {
	info *BoardInfo
	pal  palette.Palette
	tile *Tile
}

// NewBoard returns an unconfigured board using the default pxls palette.
func NewBoard() *Board {
	return &Board{pal: palette.Pxls}
}

// SetInfo supplies the board metadata. A palette in the metadata replaces
// the default table.
func (b *Board) SetInfo(info BoardInfo) error {
	if info.Width <= 0 || info.Height <= 0 {
		return fmt.Errorf("canvas: invalid board size %d×%d", info.Width, info.Height)
	}
	if len(info.Palette) > 0 {
		pal, err := palette.FromHex(info.Palette)
		if err != nil {
			return err
		}
		b.pal = pal
	}
	b.info = &info
	return nil
}

// Configured reports whether SetInfo has been called.
func (b *Board) Configured() bool {
	return b.info != nil
}

func (b *Board) Key() Key {
	return Key{Kind: KindBoard}
}

func (b *Board) PixelOrigin() (int64, int64) {
	return 0, 0
}

func (b *Board) TileSize() (int, int, error) {
	if b.info == nil {
		return 0, 0, ErrNotConfigured
	}
	return b.info.Width, b.info.Height, nil
}

func (b *Board) InBounds() bool {
	return true
}

// Request returns a zero descriptor: the board is fetched as one external
// resource by the caller, not per-chunk.
func (b *Board) Request() (Request, error) {
	return Request{}, nil
}

func (b *Board) Tile() *Tile {
	return b.tile
}

// Load wraps the raw board dump: one index byte per pixel, row-major,
// stride equal to the board width, no padding.
func (b *Board) Load(data []byte) error {
	if b.info == nil {
		return ErrNotConfigured
	}
	tile, err := newIndexedTile("board", b.info.Width, b.info.Height, data, b.pal)
	if err != nil {
		return err
	}
	b.tile = tile
	return nil
}

// Intersecting always returns the board itself as a 1×1 grid: the requested
// rectangle is advisory for a bounded board.
func (b *Board) Intersecting(x, y, dx, dy int64) ([]Chunk, Grid) {
	return []Chunk{b}, Grid{Cols: 1, Rows: 1}
}
