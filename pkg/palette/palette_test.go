package palette

import (
	"image/color"
	"testing"
)

func TestFromHex(t *testing.T) {
	p, err := FromHex([]string{"#000000", "#FFFFFF", "#E50000"})
	if err != nil {
		t.Fatalf("FromHex error: %v", err)
	}
	if len(p) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(p))
	}
	if got := p.At(2); got != (color.RGBA{R: 229, A: 255}) {
		t.Errorf("entry 2: got %v want pure red", got)
	}
}

func TestFromHexInvalid(t *testing.T) {
	if _, err := FromHex([]string{"#000000", "notacolor"}); err == nil {
		t.Fatal("expected error for invalid hex literal")
	}
	if _, err := FromHex(nil); err == nil {
		t.Fatal("expected error for empty list")
	}
}

func TestAtWrapsAround(t *testing.T) {
	// The 4-bit services index their 16-entry tables with the low nibble;
	// out-of-range indices must wrap, not panic.
	if got, want := PixelCanvas.At(17), PixelCanvas.At(1); got != want {
		t.Errorf("At(17): got %v want %v", got, want)
	}
}

func TestBackground(t *testing.T) {
	want := color.RGBA{R: 0xE4, G: 0xE4, B: 0xE4, A: 255}
	if got := PixelCanvas.Background(); got != want {
		t.Errorf("pixelcanvas background: got %v want %v", got, want)
	}
}

func TestServiceTables(t *testing.T) {
	for name, p := range map[string]Palette{
		"pixelcanvas": PixelCanvas,
		"pixelplace":  PixelPlace,
		"pixelzone":   PixelZone,
	} {
		if len(p) != 16 {
			t.Errorf("%s: expected 16 entries, got %d", name, len(p))
		}
	}
	if len(Pxls) == 0 {
		t.Error("pxls table is empty")
	}
}
