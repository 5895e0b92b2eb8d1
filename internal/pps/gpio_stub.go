//go:build !linux

package pps

import (
	"fmt"
	"io"
	"time"
)

func requestEdges(chip string, line int, consumer string, fn func(ts time.Duration)) (io.Closer, error) {
	return nil, fmt.Errorf("pps: gpio character device not supported on this platform")
}
