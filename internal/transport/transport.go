// Package transport defines the outbound sink abstraction the session core
// writes through, and a concrete gorilla/websocket implementation of it.
// Keeping the interface separate from the websocket type lets the reader,
// QA, and controller packages depend on a narrow contract instead of a
// concrete connection.
package transport

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/oduggan21/reading-assistant/internal/protocol"
)

// Sink is the write side of one duplex connection. All of its methods are
// safe to call concurrently from multiple goroutines (the reader task, the
// QA task, and the controller all write to the same connection); ordering
// across frames from different callers is not guaranteed beyond what the
// caller serializes itself, but no two frames are ever interleaved
// mid-write.
type Sink interface {
	SendText(msg protocol.ServerMessage) error
	SendBinary(frame []byte) error
}

// WSSink adapts a *websocket.Conn to Sink, serializing every write behind a
// single mutex the way the teacher's ActiveSession.backendWriteMu serializes
// writes to one shared backend connection.
type WSSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSSink wraps an established websocket connection.
func NewWSSink(conn *websocket.Conn) *WSSink {
	return &WSSink{conn: conn}
}

// SendText encodes msg and writes it as a text frame.
func (s *WSSink) SendText(msg protocol.ServerMessage) error {
	b, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, b)
}

// SendBinary writes frame as a binary message, unexamined.
func (s *WSSink) SendBinary(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// Close closes the underlying connection.
func (s *WSSink) Close() error {
	return s.conn.Close()
}
