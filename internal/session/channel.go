package session

import "sync"

// Frame is one message pushed to a viewer connection: either a full
// state snapshot or a keep-alive ping.
type Frame struct {
	Ping bool
	Data []byte
}

// Channel is one viewer's outbound stream. Sends never block: a viewer
// that stops draining (closed socket, stalled proxy) fills its buffer,
// the next send reports failure, and the hub drops the channel. That
// failed-send path is how disconnects are detected on a push-only
// stream.
type Channel struct {
	mu     sync.Mutex
	frames chan Frame
	closed bool
	unsub  func()
}

func newChannel(buffer int) *Channel {
	return &Channel{frames: make(chan Frame, buffer)}
}

// Frames is the receive side for the transport handler. It is closed
// when the channel is dropped or unsubscribed.
func (c *Channel) Frames() <-chan Frame {
	return c.frames
}

// Send enqueues a frame. Returns false when the channel is closed or
// its buffer is full; the caller must then treat the viewer as gone.
func (c *Channel) Send(f Frame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.frames <- f:
		return true
	default:
		return false
	}
}

// close tears the channel down. Safe to call more than once.
func (c *Channel) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.unsub != nil {
		c.unsub()
	}
	close(c.frames)
}
