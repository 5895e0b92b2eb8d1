package serialport

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"chronolink/internal/transport"
)

const (
	DriverTermios = "termios"
	DriverBugst   = "bugst"
	DriverTarm    = "tarm"
)

// Port is an opened channel the session can close.
type Port interface {
	transport.Channel
	io.Closer
}

// Config describes one port to open. Baud 0 leaves the driver default.
type Config struct {
	Driver  string
	Device  string
	Baud    int
	Timeout time.Duration
}

// DefaultDriver is termios on Linux and go.bug.st/serial elsewhere.
func DefaultDriver() string {
	if runtime.GOOS == "linux" {
		return DriverTermios
	}
	return DriverBugst
}

// Drivers lists the accepted driver names.
func Drivers() []string {
	return []string{DriverTermios, DriverBugst, DriverTarm}
}

// Open opens cfg.Device with the selected driver.
func Open(cfg Config) (Port, error) {
	if strings.TrimSpace(cfg.Device) == "" {
		return nil, fmt.Errorf("serialport: device is required")
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DefaultDriver()
	}
	switch driver {
	case DriverTermios:
		return openTermios(cfg)
	case DriverBugst:
		return openBugst(cfg)
	case DriverTarm:
		return openTarm(cfg)
	default:
		return nil, fmt.Errorf("serialport: unknown driver %q", cfg.Driver)
	}
}
