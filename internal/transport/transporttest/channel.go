// Package transporttest provides a scripted in-memory Channel for tests.
package transporttest

import (
	"sync"
	"time"

	"chronolink/internal/transport"
)

// Channel replays a fixed list of read chunks and records everything written
// to it. Once the script is exhausted every read is empty.
type Channel struct {
	mu sync.Mutex

	Name string

	reads  [][]byte
	next   int
	Writes [][]byte

	Reads    int
	Bauds    []int
	Timeouts []time.Duration

	// Err, when set, is returned by every I/O call.
	Err    error
	closed bool
}

var _ transport.Channel = (*Channel)(nil)

// New returns a channel that will answer reads with chunks, in order.
func New(chunks ...string) *Channel {
	c := &Channel{Name: "/dev/ttyTEST0"}
	c.Push(chunks...)
	return c
}

// Push appends chunks to the read script.
func (c *Channel) Push(chunks ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range chunks {
		c.reads = append(c.reads, []byte(s))
	}
}

// PushBytes appends a raw chunk to the read script.
func (c *Channel) PushBytes(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads = append(c.reads, append([]byte(nil), b...))
}

func (c *Channel) Location() string { return c.Name }

func (c *Channel) WriteBytes(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return transport.ErrClosed
	}
	if c.Err != nil {
		return c.Err
	}
	c.Writes = append(c.Writes, append([]byte(nil), p...))
	return nil
}

func (c *Channel) ReadChunk() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, transport.ErrClosed
	}
	if c.Err != nil {
		return nil, c.Err
	}
	c.Reads++
	if c.next >= len(c.reads) {
		return nil, nil
	}
	b := c.reads[c.next]
	c.next++
	return b, nil
}

func (c *Channel) SetBaud(rate int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.Bauds = append(c.Bauds, rate)
	return nil
}

func (c *Channel) SetTimeout(d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.Timeouts = append(c.Timeouts, d)
	return nil
}

// Close marks the channel closed; later I/O returns transport.ErrClosed.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *Channel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Written returns every write as a string, in order.
func (c *Channel) Written() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.Writes))
	for i, w := range c.Writes {
		out[i] = string(w)
	}
	return out
}

// Remaining reports how many scripted chunks have not been read yet.
func (c *Channel) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.reads) - c.next
}
