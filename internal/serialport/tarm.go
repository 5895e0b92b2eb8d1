package serialport

import (
	"fmt"
	"sync"
	"time"

	"github.com/tarm/serial"

	"chronolink/internal/transport"
)

// tarmPort adapts github.com/tarm/serial. The library cannot reconfigure an
// open port, so rate and timeout changes close and reopen it.
type tarmPort struct {
	mu   sync.Mutex
	cfg  serial.Config
	port *serial.Port
	ch   *chunker
}

func openTarm(cfg Config) (Port, error) {
	sc := serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.Timeout,
	}
	if sc.Baud == 0 {
		sc.Baud = 9600
	}
	p, err := serial.OpenPort(&sc)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}
	return &tarmPort{cfg: sc, port: p, ch: newChunker(p)}, nil
}

func (p *tarmPort) Location() string { return p.cfg.Name }

func (p *tarmPort) WriteBytes(b []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return transport.ErrClosed
	}
	return writeAll(p.port, b)
}

func (p *tarmPort) ReadChunk() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return nil, transport.ErrClosed
	}
	return p.ch.next()
}

func (p *tarmPort) SetBaud(rate int) error {
	return p.reopen(func(c *serial.Config) { c.Baud = rate })
}

func (p *tarmPort) SetTimeout(d time.Duration) error {
	return p.reopen(func(c *serial.Config) { c.ReadTimeout = d })
}

// reopen applies fn to a copy of the config and reopens the port with it.
// On failure the port stays closed and later calls return ErrClosed.
func (p *tarmPort) reopen(fn func(*serial.Config)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return transport.ErrClosed
	}
	next := p.cfg
	fn(&next)
	if err := p.port.Close(); err != nil {
		p.port = nil
		return err
	}
	port, err := serial.OpenPort(&next)
	if err != nil {
		p.port = nil
		return fmt.Errorf("reopen %s: %w", next.Name, err)
	}
	p.cfg = next
	p.port = port
	p.ch.reset(port)
	return nil
}

func (p *tarmPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}
