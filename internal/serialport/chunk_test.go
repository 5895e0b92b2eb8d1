package serialport

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// scriptedReader returns one scripted result per Read call.
type scriptedReader struct {
	steps []step
}

type step struct {
	data string
	err  error
}

func (r *scriptedReader) Read(p []byte) (int, error) {
	if len(r.steps) == 0 {
		return 0, io.EOF
	}
	s := r.steps[0]
	r.steps = r.steps[1:]
	n := copy(p, s.data)
	return n, s.err
}

func TestChunker_SplitsLines(t *testing.T) {
	r := &scriptedReader{steps: []step{{data: "SYNC?\r\nGPS"}, {data: "\r\n"}}}
	c := newChunker(r)

	got, err := c.next()
	if err != nil || string(got) != "SYNC?\r\n" {
		t.Fatalf("first=%q, %v", got, err)
	}
	got, err = c.next()
	if err != nil || string(got) != "GPS\r\n" {
		t.Fatalf("second=%q, %v", got, err)
	}
	got, err = c.next()
	if err != nil || len(got) != 0 {
		t.Fatalf("third=%q, %v want empty", got, err)
	}
}

func TestChunker_QuietFlushesPartial(t *testing.T) {
	r := &scriptedReader{steps: []step{{data: "scpi > "}, {data: ""}}}
	c := newChunker(r)

	got, err := c.next()
	if err != nil || string(got) != "scpi > " {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestChunker_EOFIsQuiet(t *testing.T) {
	r := &scriptedReader{steps: []step{{data: "", err: io.EOF}}}
	c := newChunker(r)

	got, err := c.next()
	if err != nil || got != nil {
		t.Fatalf("got %q, %v want nil, nil", got, err)
	}
}

func TestChunker_PropagatesErrors(t *testing.T) {
	boom := errors.New("input/output error")
	r := &scriptedReader{steps: []step{{err: boom}}}
	c := newChunker(r)

	if _, err := c.next(); !errors.Is(err, boom) {
		t.Fatalf("err=%v want %v", err, boom)
	}
}

func TestChunker_CapsLongLines(t *testing.T) {
	long := strings.Repeat("x", maxChunkBytes+10)
	var steps []step
	for i := 0; i < len(long); i += 512 {
		end := i + 512
		if end > len(long) {
			end = len(long)
		}
		steps = append(steps, step{data: long[i:end]})
	}
	c := newChunker(&scriptedReader{steps: steps})

	got, err := c.next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if len(got) < maxChunkBytes {
		t.Fatalf("len=%d want >= %d", len(got), maxChunkBytes)
	}
	rest, err := c.next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if len(got)+len(rest) != len(long) {
		t.Fatalf("lost bytes: %d + %d != %d", len(got), len(rest), len(long))
	}
}

func TestChunker_BinaryWithNewlineByte(t *testing.T) {
	pkt := "\xb5\x62\x0a\x04\x00\x00\x0e\x34"
	c := newChunker(&scriptedReader{steps: []step{{data: pkt}}})

	var all []byte
	for {
		got, err := c.next()
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if len(got) == 0 {
			break
		}
		all = append(all, got...)
	}
	if string(all) != pkt {
		t.Fatalf("got % X want % X", all, pkt)
	}
}

func TestOpen_Validation(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Fatalf("expected error for empty device")
	}
	if _, err := Open(Config{Device: "/dev/null", Driver: "usbtmc"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
