// Package canvas implements the chunk layer for the supported collaborative
// pixel canvas services.
//
// Each service carves its canvas into fixed-size chunks on its own grid,
// with its own coordinate offset, request protocol and payload encoding.
// This package converts pixel-space rectangles into covering chunk sets,
// builds the request each service understands, and decodes the opaque
// payload bytes into a uniform raster tile ready for compositing. It does
// no I/O of its own: fetching is the transport's job, assembling the final
// image is the renderer's.
package canvas

// Kind identifies one concrete chunk variant.
type Kind int

const (
	// KindBigChunk is a pixelcanvas.io 960×960 chunk.
	KindBigChunk Kind = iota
	// KindBigChunkPP is a pixelplace.fun 960×960 chunk, same geometry and
	// encoding as KindBigChunk with its own endpoint and palette.
	KindBigChunkPP
	// KindChunkPz is a pixelzone.io 512×512 chunk served over the socket.
	KindChunkPz
	// KindChunkPzi is a 500×500 whole-image chunk served over HTTP.
	KindChunkPzi
	// KindBoard is a single board-sized chunk (pxls.space style).
	KindBoard
)

func (k Kind) String() string {
	switch k {
	case KindBigChunk:
		return "bigchunk"
	case KindBigChunkPP:
		return "bigchunk-pp"
	case KindChunkPz:
		return "chunk-pz"
	case KindChunkPzi:
		return "chunk-pzi"
	case KindBoard:
		return "board"
	}
	return "unknown"
}

// Key identifies a chunk within its service grid. It is a comparable value
// type usable directly as a map key for deduplication. Chunks of different
// kinds are never equal, even at the same grid coordinate.
type Key struct {
	X, Y int
	Kind Kind
}

// RequestKind selects the transport a request descriptor targets.
type RequestKind int

const (
	// RequestNone marks chunks the caller fetches as a single external
	// resource rather than per-chunk (the board variant).
	RequestNone RequestKind = iota
	// RequestHTTP is a plain GET of the URL.
	RequestHTTP
	// RequestSocket is an opaque message payload sent verbatim over the
	// service's persistent socket connection.
	RequestSocket
)

// Request describes how the external transport should fetch one chunk.
type Request struct {
	Kind    RequestKind
	URL     string
	Payload string
}

// IsZero reports whether the request carries nothing to fetch.
func (r Request) IsZero() bool {
	return r.Kind == RequestNone
}

// Grid is the (columns, rows) shape of a tiling result.
type Grid struct {
	Cols, Rows int
}

// Chunk is one service tile of a canvas.
//
// Construction is cheap and does no I/O; the raster stays nil until a
// successful Load. Coordinate methods and InBounds are pure and safe for
// concurrent use; Load for distinct chunks shares no state.
type Chunk interface {
	// Key returns the chunk's grid identity.
	Key() Key
	// PixelOrigin returns the canvas pixel coordinate of the chunk's
	// top-left corner, a pure function of the grid coordinate.
	PixelOrigin() (int64, int64)
	// TileSize returns the chunk dimensions in pixels. The board variant
	// fails with ErrNotConfigured until its metadata has been supplied.
	TileSize() (width, height int, err error)
	// InBounds reports whether the grid coordinate is one the service
	// actually serves. Callers must filter on it before building
	// requests; Load does not re-check.
	InBounds() bool
	// Request returns the descriptor the transport needs to fetch this
	// chunk, or ErrOutOfBounds when InBounds is false.
	Request() (Request, error)
	// Load decodes raw payload bytes into the chunk's raster tile.
	// A failure is local to this chunk. A second call replaces the tile.
	Load(data []byte) error
	// Tile returns the decoded raster, or nil while the chunk is pending.
	// A pending chunk must not be composited.
	Tile() *Tile
}
