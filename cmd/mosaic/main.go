// Package main is the entry point for the mosaic tool.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/canvas-tiles/mosaic/internal/api"
	"github.com/canvas-tiles/mosaic/internal/cache"
	"github.com/canvas-tiles/mosaic/internal/config"
	"github.com/canvas-tiles/mosaic/internal/render"
	"github.com/canvas-tiles/mosaic/internal/service"
	"github.com/canvas-tiles/mosaic/internal/transport"
)

func main() {
	app := cli.NewApp()

	app.Name = "mosaic"
	app.Usage = "snapshot rectangles of collaborative pixel canvases"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"MOSAIC_CONFIG"},
			Value:   "config/mosaic.yaml",
			Usage:   "path to configuration file",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "snap",
			Usage:     "Fetch a canvas rectangle and write it as PNG",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "canvas", Value: "pixelcanvas", Usage: "canvas service"},
				&cli.Int64Flag{Name: "x", Usage: "pixel x origin"},
				&cli.Int64Flag{Name: "y", Usage: "pixel y origin"},
				&cli.Int64Flag{Name: "width", Aliases: []string{"w"}, Usage: "extent in pixels"},
				&cli.Int64Flag{Name: "height", Aliases: []string{"H"}, Usage: "extent in pixels"},
			},
			Action: snapAction,
		},
		{
			Name:   "serve",
			Usage:  "Run the snapshot preview server",
			Action: serveAction,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(c *cli.Context) (*config.Config, *service.Service, *render.Compositor, func(), error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, nil, nil, err
	}

	cacheManager, err := cache.NewManager(cache.Config{
		PayloadCacheSizeMB: cfg.Cache.PayloadSizeMB,
		PayloadTTL:         time.Duration(cfg.Cache.PayloadTTLMinutes) * time.Minute,
		ChunkCacheSize:     cfg.Cache.ChunkCacheSize,
	})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("initialize cache: %w", err)
	}

	client := transport.New(transport.Config{
		Timeout:   time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		SocketURL: cfg.Canvas.PixelzoneSocketURL,
		Cache:     cacheManager,
	})

	svc := service.New(service.Config{
		Transport:   client,
		Cache:       cacheManager,
		Concurrency: cfg.Fetch.Concurrency,
	})

	cleanup := func() {
		client.Close()
		cacheManager.Close()
	}
	return cfg, svc, render.NewCompositor(), cleanup, nil
}

func snapAction(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}
	out := c.Args().First()

	cfg, svc, compositor, cleanup, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer cleanup()

	id := service.CanvasID(c.String("canvas"))
	x, y := c.Int64("x"), c.Int64("y")
	dx, dy := c.Int64("width"), c.Int64("height")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var snap *service.Snapshot
	if id == service.Pxls {
		snap, err = svc.SnapshotBoard(ctx, cfg.Canvas.PxlsInfoURL, cfg.Canvas.PxlsBoardURL)
		if err == nil {
			x, y = 0, 0
			w, h, serr := snap.Chunks[0].TileSize()
			if serr != nil {
				err = serr
			} else {
				dx, dy = int64(w), int64(h)
			}
		}
	} else {
		if dx <= 0 || dy <= 0 {
			return cli.Exit("width and height must be positive", 1)
		}
		snap, err = svc.Snapshot(ctx, id, x, y, dx, dy)
	}
	if err != nil {
		return cli.Exit(err, 1)
	}

	log.Printf("tiled %d×%d chunks, %d decoded, %d failed",
		snap.Grid.Cols, snap.Grid.Rows, len(snap.Tiles), len(snap.Failed))
	for key, ferr := range snap.Failed {
		log.Printf("  chunk (%d,%d): %v", key.X, key.Y, ferr)
	}

	img, err := compositor.Compose(x, y, int(dx), int(dy), snap.Placed())
	if err != nil {
		return cli.Exit(err, 1)
	}
	if err := os.WriteFile(out, img, 0o644); err != nil {
		return cli.Exit(err, 1)
	}
	log.Printf("wrote %s (%d bytes)", out, len(img))
	return nil
}

func serveAction(c *cli.Context) error {
	cfg, svc, compositor, cleanup, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer cleanup()

	router := api.NewRouter(api.RouterConfig{
		Service:     svc,
		Compositor:  compositor,
		CORSOrigins: cfg.Server.CORSOrigins,
		Canvas:      cfg.Canvas,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server listening on http://localhost:%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
	return nil
}
