package serialport

import (
	"bytes"
	"errors"
	"io"
)

// maxChunkBytes caps a chunk that never sees a newline.
const maxChunkBytes = 4096

// chunker turns a timed-out byte stream into ReadChunk semantics: one line
// per call, or whatever arrived before the line went quiet. A zero-byte read
// (including the io.EOF os.File reports for a tty read timeout) is quiet.
type chunker struct {
	r       io.Reader
	buf     [512]byte
	pending []byte
}

func newChunker(r io.Reader) *chunker {
	return &chunker{r: r}
}

func (c *chunker) next() ([]byte, error) {
	for {
		if i := bytes.IndexByte(c.pending, '\n'); i >= 0 {
			return c.take(i + 1), nil
		}
		if len(c.pending) >= maxChunkBytes {
			return c.take(len(c.pending)), nil
		}
		n, err := c.r.Read(c.buf[:])
		if n > 0 {
			c.pending = append(c.pending, c.buf[:n]...)
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if n == 0 {
			return c.take(len(c.pending)), nil
		}
	}
}

func (c *chunker) take(n int) []byte {
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, c.pending[:n])
	c.pending = append(c.pending[:0], c.pending[n:]...)
	return out
}

// reset drops buffered bytes, used after the underlying port is swapped.
func (c *chunker) reset(r io.Reader) {
	c.r = r
	c.pending = c.pending[:0]
}

func writeAll(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}
