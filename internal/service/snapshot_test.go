package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/canvas-tiles/mosaic/internal/canvas"
)

// fakeTransport serves canned payloads keyed by URL or socket payload.
type fakeTransport struct {
	payloads map[string][]byte
	calls    int
}

func (f *fakeTransport) Fetch(ctx context.Context, req canvas.Request) ([]byte, error) {
	f.calls++
	key := req.URL
	if req.Kind == canvas.RequestSocket {
		key = req.Payload
	}
	data, ok := f.payloads[key]
	if !ok {
		return nil, fmt.Errorf("no payload for %q", key)
	}
	return data, nil
}

const bigChunkPayloadLen = 15 * 15 * 2048

func bigChunkURL(x, y int) string {
	return fmt.Sprintf("https://pixelcanvas.io/api/bigchunk/%d.%d.bmp", x*15, y*15)
}

func TestSnapshotSingleChunk(t *testing.T) {
	ft := &fakeTransport{payloads: map[string][]byte{
		bigChunkURL(0, 0): make([]byte, bigChunkPayloadLen),
	}}
	svc := New(Config{Transport: ft, Concurrency: 2})

	snap, err := svc.Snapshot(context.Background(), PixelCanvas, 0, 0, 10, 10)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if snap.Grid != (canvas.Grid{Cols: 1, Rows: 1}) {
		t.Fatalf("unexpected grid %+v", snap.Grid)
	}
	if len(snap.Tiles) != 1 || len(snap.Failed) != 0 {
		t.Fatalf("got %d tiles, %d failed", len(snap.Tiles), len(snap.Failed))
	}
	if placed := snap.Placed(); len(placed) != 1 || placed[0].X != -448 || placed[0].Y != -448 {
		t.Fatalf("unexpected placement %+v", placed)
	}
}

func TestSnapshotFailureIsolation(t *testing.T) {
	// Two chunks; one payload is corrupt. The healthy sibling must still
	// decode.
	ft := &fakeTransport{payloads: map[string][]byte{
		bigChunkURL(0, 0): make([]byte, bigChunkPayloadLen),
		bigChunkURL(1, 0): make([]byte, 7),
	}}
	svc := New(Config{Transport: ft, Concurrency: 4})

	snap, err := svc.Snapshot(context.Background(), PixelCanvas, 0, 0, 960, 10)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if snap.Grid.Cols != 2 || snap.Grid.Rows != 1 {
		t.Fatalf("unexpected grid %+v", snap.Grid)
	}
	if len(snap.Tiles) != 1 {
		t.Fatalf("expected 1 decoded tile, got %d", len(snap.Tiles))
	}
	badKey := canvas.Key{X: 1, Y: 0, Kind: canvas.KindBigChunk}
	ferr, ok := snap.Failed[badKey]
	if !ok {
		t.Fatal("corrupt chunk not recorded as failed")
	}
	var derr *canvas.DecodeError
	if !errors.As(ferr, &derr) {
		t.Errorf("failure is %v, want DecodeError", ferr)
	}
}

func TestSnapshotSkipsOutOfBounds(t *testing.T) {
	// A rectangle reaching past the bigchunk grid edge: chunk 1043 must be
	// marked out of bounds and never fetched.
	ft := &fakeTransport{payloads: map[string][]byte{
		bigChunkURL(1042, 0): make([]byte, bigChunkPayloadLen),
	}}
	svc := New(Config{Transport: ft, Concurrency: 2})

	x := int64(1042)*960 - 448
	snap, err := svc.Snapshot(context.Background(), PixelCanvas, x, 0, 960, 10)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if snap.Grid.Cols != 2 {
		t.Fatalf("unexpected grid %+v", snap.Grid)
	}
	oobKey := canvas.Key{X: 1043, Y: 0, Kind: canvas.KindBigChunk}
	if !errors.Is(snap.Failed[oobKey], canvas.ErrOutOfBounds) {
		t.Fatalf("chunk 1043: got %v want ErrOutOfBounds", snap.Failed[oobKey])
	}
	if ft.calls != 1 {
		t.Errorf("transport called %d times, want 1 (no fetch for out-of-bounds)", ft.calls)
	}
}

func TestSnapshotUnknownCanvas(t *testing.T) {
	svc := New(Config{Transport: &fakeTransport{}})
	if _, err := svc.Snapshot(context.Background(), "nonsense", 0, 0, 1, 1); err == nil {
		t.Fatal("expected error for unknown canvas")
	}
	if _, err := svc.Snapshot(context.Background(), Pxls, 0, 0, 1, 1); err == nil {
		t.Fatal("expected error directing Pxls to SnapshotBoard")
	}
}

func TestSnapshotBoard(t *testing.T) {
	ft := &fakeTransport{payloads: map[string][]byte{
		"https://example.test/info":  []byte(`{"width": 4, "height": 3, "palette": ["#000000", "#FFFFFF"]}`),
		"https://example.test/board": {0, 1, 0, 1, 1, 0, 1, 0, 0, 0, 1, 1},
	}}
	svc := New(Config{Transport: ft})

	snap, err := svc.SnapshotBoard(context.Background(), "https://example.test/info", "https://example.test/board")
	if err != nil {
		t.Fatalf("SnapshotBoard error: %v", err)
	}
	if snap.Grid != (canvas.Grid{Cols: 1, Rows: 1}) {
		t.Fatalf("unexpected grid %+v", snap.Grid)
	}
	tile, ok := snap.Tiles[canvas.Key{Kind: canvas.KindBoard}]
	if !ok {
		t.Fatal("board tile missing")
	}
	if tile.Width != 4 || tile.Height != 3 {
		t.Fatalf("board tile is %d×%d, want 4×3", tile.Width, tile.Height)
	}
}

func TestSnapshotBoardBadData(t *testing.T) {
	ft := &fakeTransport{payloads: map[string][]byte{
		"https://example.test/info":  []byte(`{"width": 4, "height": 3}`),
		"https://example.test/board": {1, 2, 3}, // wrong length
	}}
	svc := New(Config{Transport: ft})

	snap, err := svc.SnapshotBoard(context.Background(), "https://example.test/info", "https://example.test/board")
	if err != nil {
		t.Fatalf("SnapshotBoard error: %v", err)
	}
	if len(snap.Tiles) != 0 {
		t.Fatal("short board dump must not produce a tile")
	}
	if len(snap.Failed) != 1 {
		t.Fatalf("expected 1 recorded failure, got %d", len(snap.Failed))
	}
}
