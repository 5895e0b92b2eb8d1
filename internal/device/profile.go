package device

import (
	"fmt"
	"strings"

	"chronolink/internal/transport"
)

const (
	KindGPSDO = "gpsdo"
	KindGNSS  = "gnss"
	KindCSAC  = "csac"
	KindFPGA  = "fpga"
)

// Profile is what every device profile has in common.
type Profile interface {
	Kind() string
	Transport() *transport.Transport
}

// Kinds lists the profile names Open accepts.
func Kinds() []string {
	return []string{KindGPSDO, KindGNSS, KindCSAC, KindFPGA}
}

// DefaultBaud returns the link rate a profile applies on construction.
func DefaultBaud(kind string) (int, bool) {
	switch normalizeKind(kind) {
	case KindGPSDO:
		return gpsdoBaud, true
	case KindGNSS:
		return gnssBaud, true
	case KindCSAC:
		return csacBaud, true
	case KindFPGA:
		return fpgaBaud, true
	default:
		return 0, false
	}
}

// Open wraps t in the profile named kind.
func Open(kind string, t *transport.Transport) (Profile, error) {
	// Each branch checks err itself so a typed nil never ends up inside the
	// returned interface.
	switch normalizeKind(kind) {
	case KindGPSDO:
		p, err := NewGPSDO(t)
		if err != nil {
			return nil, err
		}
		return p, nil
	case KindGNSS:
		p, err := NewGNSS(t)
		if err != nil {
			return nil, err
		}
		return p, nil
	case KindCSAC:
		p, err := NewCSAC(t)
		if err != nil {
			return nil, err
		}
		return p, nil
	case KindFPGA:
		p, err := NewFPGA(t)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, kind)
	}
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}
