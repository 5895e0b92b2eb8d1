package device

import (
	"fmt"
	"strconv"

	"chronolink/internal/transport"
)

// Base holds the transport shared by every capability of a profile. It does
// not own it.
type Base struct {
	t *transport.Transport
}

func NewBase(t *transport.Transport) Base { return Base{t: t} }

func (b Base) Transport() *transport.Transport { return b.t }

// applyDefaults sets the baud rate and timeout a device expects on power-up.
func (b Base) applyDefaults(baud, timeoutMS int) error {
	if b.t == nil {
		return transport.ErrClosed
	}
	if err := b.t.SetTimeout(timeoutMS); err != nil {
		return err
	}
	if _, err := b.t.SetBaud(baud); err != nil {
		return err
	}
	return nil
}

// command writes cmd and eats the echo and prompt that follow it.
func (b Base) command(cmd string) error {
	if err := b.t.Write(cmd); err != nil {
		return err
	}
	return b.t.Eat(transport.EatDefault)
}

func checkInt(cmd string, v, lo, hi int) error {
	if v < lo || v > hi {
		return &RangeError{Command: cmd, Value: strconv.Itoa(v), Allowed: fmt.Sprintf("[%d, %d]", lo, hi)}
	}
	return nil
}

func checkFloat(cmd string, v, lo, hi float64) error {
	// Inclusion test: NaN is rejected.
	if !(v >= lo && v <= hi) {
		return &RangeError{
			Command: cmd,
			Value:   strconv.FormatFloat(v, 'g', -1, 64),
			Allowed: fmt.Sprintf("[%s, %s]", strconv.FormatFloat(lo, 'f', 1, 64), strconv.FormatFloat(hi, 'f', 1, 64)),
		}
	}
	return nil
}

func checkMember(cmd string, v int, set []int) error {
	for _, s := range set {
		if s == v {
			return nil
		}
	}
	return &RangeError{Command: cmd, Value: strconv.Itoa(v), Allowed: fmt.Sprint(set)}
}

// formatFloat renders v with six fractional digits, the format the
// oscillator firmware is documented against.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
