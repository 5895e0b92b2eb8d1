//go:build !linux

package serialport

import "fmt"

func openTermios(cfg Config) (Port, error) {
	return nil, fmt.Errorf("serialport: termios driver not supported on this platform, use %q", DriverBugst)
}
