package canvas

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		img.Pix[i*4] = c.R
		img.Pix[i*4+1] = c.G
		img.Pix[i*4+2] = c.B
		img.Pix[i*4+3] = 255
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestChunkPziLoad(t *testing.T) {
	ch := NewChunkPzi(0, 0)
	want := color.RGBA{R: 10, G: 200, B: 30, A: 255}
	if err := ch.Load(encodePNG(t, 500, 500, want)); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	tile := ch.Tile()
	if tile.Mode != ModeRGB {
		t.Fatalf("expected RGB output, got mode %d", tile.Mode)
	}
	if len(tile.Pix) != 500*500*3 {
		t.Fatalf("raster is %d bytes, want %d", len(tile.Pix), 500*500*3)
	}
	if tile.Pix[0] != want.R || tile.Pix[1] != want.G || tile.Pix[2] != want.B {
		t.Errorf("pixel 0: got (%d,%d,%d)", tile.Pix[0], tile.Pix[1], tile.Pix[2])
	}
}

func TestChunkPziLoadWrongSize(t *testing.T) {
	err := NewChunkPzi(0, 0).Load(encodePNG(t, 100, 100, color.RGBA{A: 255}))
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestChunkPziLoadGarbage(t *testing.T) {
	err := NewChunkPzi(0, 0).Load([]byte("not an image"))
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestChunkPziGeometry(t *testing.T) {
	px, py := NewChunkPzi(0, 0).PixelOrigin()
	if px != -4000 || py != -4000 {
		t.Errorf("chunk (0,0) origin (%d,%d), want (-4000,-4000)", px, py)
	}
	w, h, err := NewChunkPzi(0, 0).TileSize()
	if err != nil || w != 500 || h != 500 {
		t.Errorf("TileSize: got %d×%d err=%v", w, h, err)
	}
	if NewChunkPzi(16, 0).InBounds() {
		t.Error("chunk (16,0) should be out of bounds")
	}
}
