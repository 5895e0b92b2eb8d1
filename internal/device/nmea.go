package device

import (
	"strings"

	"chronolink/internal/framing"
	"chronolink/internal/transport"
)

// DefaultMaxAbsorb bounds how many extra reads one Absorb call may issue.
const DefaultMaxAbsorb = 1024

// NMEA buffers unsolicited '$' sentences that arrive in place of a command's
// reply, so the reply itself reaches the caller.
//
// The framing is a heuristic: the first read that does not start with '$' is
// taken as the reply. A truncated or reordered reply is misclassified.
type NMEA struct {
	Base

	pending   []string
	maxAbsorb int
}

func NewNMEA(t *transport.Transport) *NMEA {
	return &NMEA{Base: NewBase(t), maxAbsorb: DefaultMaxAbsorb}
}

// Absorb returns candidate unchanged unless it starts with '$'. Otherwise the
// candidate is buffered and reads continue until one yields text that does not
// start with '$'; that text is returned.
func (n *NMEA) Absorb(candidate string) (string, error) {
	for reads := 0; strings.HasPrefix(candidate, "$"); reads++ {
		if reads == n.maxAbsorb {
			return "", ErrAbsorbLimit
		}
		n.pending = append(n.pending, candidate)
		next, err := n.t.Read()
		if err != nil {
			return "", err
		}
		candidate = next
	}
	return candidate, nil
}

// Listen drains whatever the device has sent and absorbs it. It returns the
// first non-sentence text, which is usually empty for a receiver that only
// streams sentences.
func (n *NMEA) Listen() (string, error) {
	text, err := n.t.Read()
	if err != nil {
		return "", err
	}
	return n.Absorb(text)
}

// Sentences returns a copy of the buffered sentences without clearing them.
func (n *NMEA) Sentences() []string {
	out := make([]string, len(n.pending))
	copy(out, n.pending)
	return out
}

// Drain concatenates the buffered sentences, clears the buffer, and returns
// the text. It returns "" when nothing was buffered.
func (n *NMEA) Drain() string {
	out := strings.Join(n.pending, "")
	n.pending = n.pending[:0]
	return out
}

// SendSentence checksums body as `$body*HH` and writes it.
func (n *NMEA) SendSentence(body string) error {
	s, err := framing.AddNMEAChecksum("$" + strings.TrimPrefix(body, "$"))
	if err != nil {
		return err
	}
	return n.t.Write(s)
}
