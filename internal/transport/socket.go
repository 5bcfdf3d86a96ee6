package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Engine.io framing: the services speak socket.io over a websocket, so data
// events arrive as text frames prefixed "42" carrying a JSON array of
// [event, argument]. Only enough of the protocol is implemented to keep the
// connection alive and pull data frames off it; request payloads pass
// through untouched.
const (
	framePing    = "2"
	framePong    = "3"
	frameConnect = "40"
	frameEvent   = "42"
)

// SocketClient is a single persistent service socket. Calls are serialized:
// one request payload is written, then frames are read until one matches.
type SocketClient struct {
	conn *websocket.Conn
}

// DialSocket connects and waits for the connect acknowledgement.
func DialSocket(ctx context.Context, url string) (*SocketClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", url, err)
	}
	s := &SocketClient{conn: conn}

	deadline := time.Now().Add(15 * time.Second)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	conn.SetReadDeadline(deadline)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("transport: socket handshake: %w", err)
		}
		frame := string(msg)
		if strings.HasPrefix(frame, frameConnect) {
			return s, nil
		}
		// Ignore the engine.io open packet and anything else pre-connect.
	}
}

// Do sends payload verbatim and returns the content of the first event
// frame the matcher accepts. Protocol pings are answered along the way.
func (s *SocketClient) Do(ctx context.Context, payload string, match func(frame string) (string, bool)) (string, error) {
	deadline := time.Now().Add(30 * time.Second)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	s.conn.SetWriteDeadline(deadline)
	s.conn.SetReadDeadline(deadline)

	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		return "", fmt.Errorf("transport: socket write: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			return "", fmt.Errorf("transport: socket read: %w", err)
		}
		frame := string(msg)
		if frame == framePing {
			if err := s.conn.WriteMessage(websocket.TextMessage, []byte(framePong)); err != nil {
				return "", fmt.Errorf("transport: socket pong: %w", err)
			}
			continue
		}
		if content, ok := match(frame); ok {
			return content, nil
		}
	}
}

// Close closes the underlying connection.
func (s *SocketClient) Close() error {
	return s.conn.Close()
}

// matchChunkData extracts the chunk payload from a pixelzone data frame:
// a "42"-prefixed event array whose first element is the chunk event name
// and whose second is the compressed chunk string.
func matchChunkData(frame string) (string, bool) {
	if !strings.HasPrefix(frame, frameEvent) {
		return "", false
	}
	var msg []json.RawMessage
	if err := json.Unmarshal([]byte(frame[len(frameEvent):]), &msg); err != nil || len(msg) < 2 {
		return "", false
	}
	var event string
	if err := json.Unmarshal(msg[0], &event); err != nil || event != "c" {
		return "", false
	}
	var content string
	if err := json.Unmarshal(msg[1], &content); err != nil {
		return "", false
	}
	return content, true
}
