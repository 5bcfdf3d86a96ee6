// Package api provides the HTTP preview surface of the mosaic tool.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/canvas-tiles/mosaic/internal/config"
	"github.com/canvas-tiles/mosaic/internal/render"
	"github.com/canvas-tiles/mosaic/internal/service"
)

// Snapshot rectangles above this edge length are refused outright; a
// misdirected zoom would otherwise tile thousands of chunks.
const maxExtent = 8192

// RouterConfig contains router configuration.
type RouterConfig struct {
	Service     *service.Service
	Compositor  *render.Compositor
	CORSOrigins []string
	Canvas      config.CanvasConfig
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/api/canvases", canvasesHandler)
	r.Get("/api/canvas/{canvas}/snapshot", snapshotHandler(cfg))

	return r
}

func canvasesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, service.Canvases())
}

// snapshotHandler renders the requested pixel rectangle of a canvas as PNG.
// Query parameters: x, y (pixel origin, default 0) and w, h (extent).
func snapshotHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := service.CanvasID(chi.URLParam(r, "canvas"))

		x := queryInt64(r, "x", 0)
		y := queryInt64(r, "y", 0)
		dx := queryInt64(r, "w", 0)
		dy := queryInt64(r, "h", 0)

		var snap *service.Snapshot
		var err error
		if id == service.Pxls {
			snap, err = cfg.Service.SnapshotBoard(r.Context(), cfg.Canvas.PxlsInfoURL, cfg.Canvas.PxlsBoardURL)
			if err == nil {
				// The rectangle is advisory for a bounded board; render
				// the whole thing.
				x, y = 0, 0
				width, height, serr := snap.Chunks[0].TileSize()
				if serr != nil {
					err = serr
				} else {
					dx, dy = int64(width), int64(height)
				}
			}
		} else {
			if dx <= 0 || dy <= 0 {
				http.Error(w, "w and h must be positive", http.StatusBadRequest)
				return
			}
			if dx > maxExtent || dy > maxExtent {
				http.Error(w, "requested extent too large", http.StatusBadRequest)
				return
			}
			snap, err = cfg.Service.Snapshot(r.Context(), id, x, y, dx, dy)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		for key, ferr := range snap.Failed {
			log.Printf("snapshot %s: chunk (%d,%d) failed: %v", id, key.X, key.Y, ferr)
		}

		img, err := cfg.Compositor.Compose(x, y, int(dx), int(dy), snap.Placed())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=60")
		w.Write(img)
	}
}

func queryInt64(r *http.Request, name string, def int64) int64 {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
