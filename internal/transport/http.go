// Package transport fetches raw chunk payloads over HTTP and over the
// persistent socket connections some services require. It moves bytes only:
// request descriptors are forwarded verbatim and payloads are returned
// undecoded.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/canvas-tiles/mosaic/internal/cache"
	"github.com/canvas-tiles/mosaic/internal/canvas"
)

// Config contains transport configuration.
type Config struct {
	Timeout   time.Duration
	SocketURL string
	// Cache, when set, short-circuits repeat fetches of the same request.
	Cache *cache.Manager
}

// Client fetches chunk payloads. HTTP requests go through a shared
// http.Client; socket requests go through a lazily dialed service socket.
type Client struct {
	http      *http.Client
	socketURL string
	cache     *cache.Manager

	mu     sync.Mutex
	socket *SocketClient
}

// New creates a transport client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		socketURL: cfg.SocketURL,
		cache:     cfg.Cache,
	}
}

// Fetch returns the raw payload bytes for a request descriptor.
func (c *Client) Fetch(ctx context.Context, req canvas.Request) ([]byte, error) {
	if req.IsZero() {
		return nil, fmt.Errorf("transport: empty request descriptor")
	}

	key := cache.PayloadKey(req)
	if c.cache != nil {
		if data, ok := c.cache.GetPayload(key); ok {
			return data, nil
		}
	}

	var data []byte
	var err error
	switch req.Kind {
	case canvas.RequestHTTP:
		data, err = c.Get(ctx, req.URL)
	case canvas.RequestSocket:
		data, err = c.viaSocket(ctx, req.Payload)
	default:
		err = fmt.Errorf("transport: unsupported request kind %d", req.Kind)
	}
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		// Best effort; a full cache only costs the next fetch.
		c.cache.SetPayload(key, data)
	}
	return data, nil
}

// Get performs a plain HTTP GET, negotiating gzip on the wire.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transport: GET %s: unexpected status %s", url, resp.Status)
	}

	body := io.Reader(resp.Body)
	if resp.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("transport: GET %s: %w", url, err)
		}
		defer zr.Close()
		body = zr
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("transport: GET %s: %w", url, err)
	}
	return data, nil
}

func (c *Client) viaSocket(ctx context.Context, payload string) ([]byte, error) {
	if c.socketURL == "" {
		return nil, fmt.Errorf("transport: no socket endpoint configured")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.socket == nil {
		s, err := DialSocket(ctx, c.socketURL)
		if err != nil {
			return nil, err
		}
		c.socket = s
	}

	content, err := c.socket.Do(ctx, payload, matchChunkData)
	if err != nil {
		// A dead connection is not recoverable mid-call; drop it so the
		// next request redials.
		c.socket.Close()
		c.socket = nil
		return nil, err
	}
	return []byte(content), nil
}

// Close releases the socket connection, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.socket != nil {
		err := c.socket.Close()
		c.socket = nil
		return err
	}
	return nil
}
