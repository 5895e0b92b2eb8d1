package serialport

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"

	"chronolink/internal/transport"
)

// bugstPort adapts go.bug.st/serial. It can change rate and timeout on an
// open port, and runs on every OS the library supports.
type bugstPort struct {
	mu   sync.Mutex
	name string
	mode serial.Mode
	port serial.Port
	ch   *chunker
}

func openBugst(cfg Config) (Port, error) {
	mode := serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	if mode.BaudRate == 0 {
		mode.BaudRate = 9600
	}
	p, err := serial.Open(cfg.Device, &mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}
	if err := p.SetReadTimeout(readTimeout(cfg.Timeout)); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", cfg.Device, err)
	}
	return &bugstPort{name: cfg.Device, mode: mode, port: p, ch: newChunker(p)}, nil
}

func readTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return serial.NoTimeout
	}
	return d
}

func (p *bugstPort) Location() string { return p.name }

func (p *bugstPort) WriteBytes(b []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return transport.ErrClosed
	}
	return writeAll(p.port, b)
}

func (p *bugstPort) ReadChunk() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return nil, transport.ErrClosed
	}
	return p.ch.next()
}

func (p *bugstPort) SetBaud(rate int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return transport.ErrClosed
	}
	mode := p.mode
	mode.BaudRate = rate
	if err := p.port.SetMode(&mode); err != nil {
		return err
	}
	p.mode = mode
	return nil
}

func (p *bugstPort) SetTimeout(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return transport.ErrClosed
	}
	return p.port.SetReadTimeout(readTimeout(d))
}

func (p *bugstPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}
