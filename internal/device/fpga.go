package device

import (
	"fmt"

	"chronolink/internal/transport"
)

const (
	fpgaBaud      = 57600
	fpgaTimeoutMS = 100
)

// FPGA is a timing board with a proprietary protocol. Only its link settings
// are known; callers talk to it through Transport directly.
type FPGA struct {
	Base
}

// NewFPGA sets 57600 baud and a 100 ms timeout on t.
func NewFPGA(t *transport.Transport) (*FPGA, error) {
	f := &FPGA{Base: NewBase(t)}
	if err := f.applyDefaults(fpgaBaud, fpgaTimeoutMS); err != nil {
		return nil, fmt.Errorf("fpga defaults: %w", err)
	}
	return f, nil
}

func (f *FPGA) Kind() string { return KindFPGA }
