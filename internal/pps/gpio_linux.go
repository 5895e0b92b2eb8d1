//go:build linux

package pps

import (
	"fmt"
	"io"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

func requestEdges(chip string, line int, consumer string, fn func(ts time.Duration)) (io.Closer, error) {
	if line < 0 {
		return nil, fmt.Errorf("pps: invalid gpio line %d", line)
	}
	handler := func(evt gpiocdev.LineEvent) {
		if evt.Type == gpiocdev.LineEventRisingEdge {
			fn(evt.Timestamp)
		}
	}
	l, err := gpiocdev.RequestLine(chip, line,
		gpiocdev.AsInput,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(handler),
		gpiocdev.WithConsumer(consumer),
	)
	if err != nil {
		return nil, fmt.Errorf("pps: request %s line %d: %w", chip, line, err)
	}
	return l, nil
}
