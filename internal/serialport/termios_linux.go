//go:build linux

package serialport

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"chronolink/internal/transport"
)

type termiosPort struct {
	mu   sync.Mutex
	path string
	f    *os.File
	ch   *chunker
}

func openTermios(cfg Config) (Port, error) {
	flag := unix.O_RDWR | unix.O_NOCTTY
	fd, err := unix.Open(cfg.Device, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}

	// If anything below fails, close fd.
	ok := false
	defer func() {
		if !ok {
			_ = unix.Close(fd)
		}
	}()

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, err
	}

	// Raw mode, 8N1, no flow control.
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL

	setReadTimeout(t, cfg.Timeout)

	if cfg.Baud != 0 {
		if err := setSpeed(t, cfg.Baud); err != nil {
			return nil, err
		}
	}

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		return nil, err
	}

	f := os.NewFile(uintptr(fd), cfg.Device)
	if f == nil {
		return nil, fmt.Errorf("os.NewFile failed")
	}
	ok = true
	return &termiosPort{path: cfg.Device, f: f, ch: newChunker(f)}, nil
}

// setReadTimeout maps d onto VMIN/VTIME. VTIME counts deciseconds and tops
// out at 25.5 s. A zero timeout blocks until at least one byte arrives.
func setReadTimeout(t *unix.Termios, d time.Duration) {
	if d <= 0 {
		t.Cc[unix.VMIN] = 1
		t.Cc[unix.VTIME] = 0
		return
	}
	ds := (d + 100*time.Millisecond - 1) / (100 * time.Millisecond)
	if ds > 255 {
		ds = 255
	}
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = uint8(ds)
}

func setSpeed(t *unix.Termios, baud int) error {
	spd, err := baudToUnix(baud)
	if err != nil {
		return err
	}
	t.Cflag &^= unix.CBAUD
	t.Cflag |= spd
	t.Ispeed = spd
	t.Ospeed = spd
	return nil
}

func (p *termiosPort) Location() string { return p.path }

func (p *termiosPort) WriteBytes(b []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.f == nil {
		return transport.ErrClosed
	}
	return writeAll(p.f, b)
}

func (p *termiosPort) ReadChunk() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.f == nil {
		return nil, transport.ErrClosed
	}
	return p.ch.next()
}

func (p *termiosPort) SetBaud(rate int) error {
	return p.update(func(t *unix.Termios) error { return setSpeed(t, rate) })
}

func (p *termiosPort) SetTimeout(d time.Duration) error {
	return p.update(func(t *unix.Termios) error {
		setReadTimeout(t, d)
		return nil
	})
}

func (p *termiosPort) update(fn func(*unix.Termios) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.f == nil {
		return transport.ErrClosed
	}
	fd := int(p.f.Fd())
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}
	if err := fn(t); err != nil {
		return err
	}
	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}

func (p *termiosPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.f == nil {
		return nil
	}
	err := p.f.Close()
	p.f = nil
	return err
}

func baudToUnix(baud int) (uint32, error) {
	switch baud {
	case 50:
		return unix.B50, nil
	case 75:
		return unix.B75, nil
	case 110:
		return unix.B110, nil
	case 134:
		return unix.B134, nil
	case 150:
		return unix.B150, nil
	case 200:
		return unix.B200, nil
	case 300:
		return unix.B300, nil
	case 600:
		return unix.B600, nil
	case 1200:
		return unix.B1200, nil
	case 1800:
		return unix.B1800, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 500000:
		return unix.B500000, nil
	case 576000:
		return unix.B576000, nil
	case 921600:
		return unix.B921600, nil
	case 1000000:
		return unix.B1000000, nil
	case 1152000:
		return unix.B1152000, nil
	case 1500000:
		return unix.B1500000, nil
	case 2000000:
		return unix.B2000000, nil
	case 2500000:
		return unix.B2500000, nil
	case 3000000:
		return unix.B3000000, nil
	case 3500000:
		return unix.B3500000, nil
	case 4000000:
		return unix.B4000000, nil
	default:
		return 0, fmt.Errorf("unsupported baud %d", baud)
	}
}
