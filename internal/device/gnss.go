package device

import (
	"fmt"

	"chronolink/internal/transport"
)

const (
	gnssBaud      = 9600
	gnssTimeoutMS = 100
)

// GNSS is a u-blox receiver: UBX for polls and configuration, NMEA for the
// sentence stream it emits unprompted.
type GNSS struct {
	Base
	*NMEA
	*UBX
}

// NewGNSS sets 9600 baud and a 100 ms timeout on t.
func NewGNSS(t *transport.Transport) (*GNSS, error) {
	g := &GNSS{
		Base: NewBase(t),
		NMEA: NewNMEA(t),
		UBX:  NewUBX(t),
	}
	if err := g.applyDefaults(gnssBaud, gnssTimeoutMS); err != nil {
		return nil, fmt.Errorf("gnss defaults: %w", err)
	}
	return g, nil
}

func (g *GNSS) Kind() string { return KindGNSS }

// Version returns the escaped UBX-MON-VER reply.
func (g *GNSS) Version() (string, error) { return g.MonVer() }

// Hardware returns the escaped UBX-MON-HW reply.
func (g *GNSS) Hardware() (string, error) { return g.MonHW() }

func (g *GNSS) PVT() (string, error) { return g.NavPVT() }

func (g *GNSS) TimeUTC() (string, error) { return g.NavTimeUTC() }

// TimePulse returns the escaped CFG-TP5 reply.
func (g *GNSS) TimePulse() (string, error) { return g.CfgTP5() }
