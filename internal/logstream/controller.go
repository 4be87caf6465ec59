// Package logstream maintains the live container log channel: a websocket
// connection to the backend's docker log endpoint feeding a bounded ring
// buffer.
package logstream

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sivacor/sivacor-cli/internal/logging"
)

// ConnState is the log channel's connection state.
type ConnState int

const (
	// StateDisconnected means no socket and no dial in flight.
	StateDisconnected ConnState = iota
	// StateConnecting means a dial is in flight.
	StateConnecting
	// StateConnected means frames are being consumed.
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// Controller owns the websocket lifecycle. Connecting is explicit and
// reconnection is manual: a dropped or failed stream stays down until the
// caller connects again. The controller never affects status polling.
type Controller struct {
	url      string
	logger   *logging.Logger
	buffer   *Buffer
	onAppend func(LogEntry)

	mu         sync.Mutex
	state      ConnState
	conn       *websocket.Conn
	cancelDial context.CancelFunc
	streamErr  string
	generation int
}

// NewController creates a controller for the given stream URL. onAppend,
// when non-nil, fires after each entry lands in the buffer.
func NewController(url string, capacity int, logger *logging.Logger, onAppend func(LogEntry)) *Controller {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return &Controller{
		url:      url,
		logger:   logger,
		buffer:   NewBuffer(capacity),
		onAppend: onAppend,
	}
}

// State returns the connection state.
func (c *Controller) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StreamError returns the last stream failure message, or "". Cleared on
// disconnect.
func (c *Controller) StreamError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streamErr
}

// Entries returns the buffered entries, oldest first.
func (c *Controller) Entries() []LogEntry {
	return c.buffer.Entries()
}

// BufferLen returns the number of buffered entries.
func (c *Controller) BufferLen() int {
	return c.buffer.Len()
}

// Connect dials the stream endpoint and starts consuming frames. A no-op
// when a dial is in flight or the stream is already connected. The dial and
// the read loop run off the caller's goroutine; failures surface through
// StreamError.
func (c *Controller) Connect(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.streamErr = ""
	c.generation++
	gen := c.generation
	dialCtx, cancel := context.WithCancel(ctx)
	c.cancelDial = cancel
	c.mu.Unlock()

	go c.dialAndConsume(dialCtx, gen)
}

func (c *Controller) dialAndConsume(ctx context.Context, gen int) {
	c.logger.Debug().Str("url", c.url).Msg("Dialing log stream")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.mu.Lock()
		if c.generation == gen {
			c.state = StateDisconnected
			c.streamErr = "could not connect to log stream"
			c.cancelDial = nil
		}
		c.mu.Unlock()
		if ctx.Err() == nil {
			c.logger.Warn().Err(err).Msg("Log stream dial failed")
		}
		return
	}

	c.mu.Lock()
	if c.generation != gen {
		// Disconnected while the dial was in flight.
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.state = StateConnected
	c.conn = conn
	c.mu.Unlock()

	c.logger.Debug().Msg("Log stream connected")

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.generation == gen {
				c.state = StateDisconnected
				c.conn = nil
				c.cancelDial = nil
				if ctx.Err() == nil {
					c.streamErr = "log stream closed unexpectedly"
				}
			}
			c.mu.Unlock()
			conn.Close()
			return
		}

		entry := Normalize(payload, time.Now())
		c.buffer.Append(entry)
		if c.onAppend != nil {
			c.onAppend(entry)
		}
	}
}

// Disconnect tears the channel down: cancels an in-flight dial, closes the
// socket, clears the buffer and the error flag. Idempotent; runs on explicit
// disconnect, job completion, reset, and shutdown.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	c.generation++
	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}
	conn := c.conn
	c.conn = nil
	c.state = StateDisconnected
	c.streamErr = ""
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.buffer.Clear()
}
