package device

import (
	"chronolink/internal/framing"
	"chronolink/internal/transport"
)

// UBX builds, checksums and escapes u-blox binary packets, and decodes the
// escaped replies.
type UBX struct {
	Base
}

func NewUBX(t *transport.Transport) *UBX {
	return &UBX{Base: NewBase(t)}
}

// Poll sends a zero-payload request for class/id and returns the escaped
// reply text.
func (u *UBX) Poll(class, id byte) (string, error) {
	return u.t.QueryRaw(framing.Escape(framing.EncodeUBX(class, id, nil)))
}

// SendPacket writes one packet without waiting for a reply.
func (u *UBX) SendPacket(class, id byte, payload []byte) error {
	return u.t.WriteRaw(framing.Escape(framing.EncodeUBX(class, id, payload)))
}

// MonVer polls UBX-MON-VER: firmware, hardware and extension versions.
func (u *UBX) MonVer() (string, error) { return u.Poll(framing.ClassMON, framing.IDMonVer) }

// MonHW polls UBX-MON-HW: antenna, jamming and pin state.
func (u *UBX) MonHW() (string, error) { return u.Poll(framing.ClassMON, framing.IDMonHW) }

func (u *UBX) NavPVT() (string, error) { return u.Poll(framing.ClassNAV, framing.IDNavPVT) }

func (u *UBX) NavTimeUTC() (string, error) { return u.Poll(framing.ClassNAV, framing.IDNavTimeUTC) }

// CfgTP5 polls the time pulse configuration.
func (u *UBX) CfgTP5() (string, error) { return u.Poll(framing.ClassCFG, framing.IDCfgTP5) }

// Decode unescapes a reply and returns the packets it contains. Checksums are
// reported per frame, not enforced.
func Decode(reply string) ([]framing.Frame, error) {
	b, err := framing.Unescape(reply)
	if err != nil {
		return nil, err
	}
	return framing.ScanUBX(b), nil
}
