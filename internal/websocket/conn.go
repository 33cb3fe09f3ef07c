package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn wraps a WebSocket connection with a single writer goroutine so that
// concurrent broadcasts and acknowledgements never interleave writes. The
// username comes from the upstream auth layer, the session id is assigned at
// upgrade time; both are immutable for the connection's lifetime.
type Conn struct {
	conn      *websocket.Conn
	writeCh   chan []byte
	username  string
	sessionID string
	writeWait time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConn wraps an upgraded connection and starts its write loop.
func NewConn(conn *websocket.Conn, username, sessionID string, bufferSize int, writeWait time.Duration) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		conn:      conn,
		writeCh:   make(chan []byte, bufferSize),
		username:  username,
		sessionID: sessionID,
		writeWait: writeWait,
		ctx:       ctx,
		cancel:    cancel,
	}
	go c.writeLoop()
	return c
}

func (c *Conn) Username() string  { return c.username }
func (c *Conn) SessionID() string { return c.sessionID }

func (c *Conn) writeLoop() {
	for {
		select {
		case data := <-c.writeCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// Send marshals the message and queues it on the write loop.
func (c *Conn) Send(message interface{}) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	data, err := json.Marshal(message)
	if err != nil {
		return ErrInvalidJSON
	}

	select {
	case c.writeCh <- data:
		return nil
	case <-time.After(c.writeWait):
		return ErrWriteTimeout
	case <-c.ctx.Done():
		return ErrConnectionClosed
	}
}

// Close stops the write loop and closes the underlying connection. Safe to
// call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}
