package api

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canvas-tiles/mosaic/internal/canvas"
	"github.com/canvas-tiles/mosaic/internal/config"
	"github.com/canvas-tiles/mosaic/internal/render"
	"github.com/canvas-tiles/mosaic/internal/service"
)

type stubTransport struct {
	payloads map[string][]byte
}

func (s *stubTransport) Fetch(ctx context.Context, req canvas.Request) ([]byte, error) {
	key := req.URL
	if req.Kind == canvas.RequestSocket {
		key = req.Payload
	}
	data, ok := s.payloads[key]
	if !ok {
		return nil, fmt.Errorf("no payload for %q", key)
	}
	return data, nil
}

func newTestServer(t *testing.T, payloads map[string][]byte) *httptest.Server {
	t.Helper()

	svc := service.New(service.Config{
		Transport:   &stubTransport{payloads: payloads},
		Concurrency: 2,
	})
	router := NewRouter(RouterConfig{
		Service:     svc,
		Compositor:  render.NewCompositor(),
		CORSOrigins: []string{"*"},
		Canvas: config.CanvasConfig{
			PxlsInfoURL:  "https://example.test/info",
			PxlsBoardURL: "https://example.test/board",
		},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestCanvasesEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/canvases")
	if err != nil {
		t.Fatalf("GET /api/canvases: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	var ids []string
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(ids) != 5 {
		t.Fatalf("expected 5 canvases, got %v", ids)
	}
}

func TestSnapshotEndpoint(t *testing.T) {
	srv := newTestServer(t, map[string][]byte{
		"https://pixelcanvas.io/api/bigchunk/0.0.bmp": make([]byte, 15*15*2048),
	})

	resp, err := http.Get(srv.URL + "/api/canvas/pixelcanvas/snapshot?x=0&y=0&w=20&h=10")
	if err != nil {
		t.Fatalf("GET snapshot: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("unexpected content type %q", ct)
	}

	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("response is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 10 {
		t.Fatalf("mosaic is %v, want 20×10", img.Bounds())
	}
}

func TestSnapshotEndpointValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, q := range []string{
		"?x=0&y=0",                // missing extent
		"?x=0&y=0&w=-5&h=10",      // negative
		"?x=0&y=0&w=100000&h=100", // too large
	} {
		resp, err := http.Get(srv.URL + "/api/canvas/pixelcanvas/snapshot" + q)
		if err != nil {
			t.Fatalf("GET snapshot%s: %v", q, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("query %q: got status %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestSnapshotEndpointBoard(t *testing.T) {
	srv := newTestServer(t, map[string][]byte{
		"https://example.test/info":  []byte(`{"width": 6, "height": 4}`),
		"https://example.test/board": make([]byte, 24),
	})

	resp, err := http.Get(srv.URL + "/api/canvas/pxls/snapshot")
	if err != nil {
		t.Fatalf("GET board snapshot: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("response is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 4 {
		t.Fatalf("board mosaic is %v, want 6×4", img.Bounds())
	}
}
