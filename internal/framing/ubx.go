package framing

import "fmt"

const (
	UBXSync1 = 0xB5
	UBXSync2 = 0x62

	// sync(2) + class + id + length(2) + checksum(2)
	ubxOverhead = 8
)

// UBX message classes used by the receiver profile.
const (
	ClassNAV = 0x01
	ClassCFG = 0x06
	ClassMON = 0x0A
)

// UBX message IDs.
const (
	IDNavPVT     = 0x07
	IDNavTimeUTC = 0x21
	IDCfgTP5     = 0x31
	IDMonVer     = 0x04
	IDMonHW      = 0x09
)

// Packet is a decoded UBX frame.
type Packet struct {
	Class   byte
	ID      byte
	Payload []byte
}

// UBXChecksum computes the two-accumulator checksum over pkt[2:], skipping
// the sync bytes. Both accumulators wrap at 256.
func UBXChecksum(pkt []byte) (ckA, ckB byte) {
	for i := 2; i < len(pkt); i++ {
		ckA += pkt[i]
		ckB += ckA
	}
	return ckA, ckB
}

// AppendUBXChecksum returns pkt with ckA and ckB appended.
func AppendUBXChecksum(pkt []byte) []byte {
	a, b := UBXChecksum(pkt)
	out := make([]byte, 0, len(pkt)+2)
	out = append(out, pkt...)
	return append(out, a, b)
}

// EncodeUBX builds a complete packet: sync, class, id, little-endian payload
// length, payload, checksum.
func EncodeUBX(class, id byte, payload []byte) []byte {
	n := len(payload)
	pkt := make([]byte, 6, ubxOverhead+n)
	pkt[0] = UBXSync1
	pkt[1] = UBXSync2
	pkt[2] = class
	pkt[3] = id
	pkt[4] = byte(n & 0xFF)
	pkt[5] = byte((n >> 8) & 0xFF)
	pkt = append(pkt, payload...)
	return AppendUBXChecksum(pkt)
}

// DecodeUBX parses one packet from the start of frame. It returns the packet,
// whether the trailing checksum matched, and an error for frames that are
// structurally malformed. Bytes after the packet are ignored.
func DecodeUBX(frame []byte) (pkt Packet, ckOK bool, err error) {
	if len(frame) < ubxOverhead {
		return Packet{}, false, fmt.Errorf("ubx: frame too short: %d", len(frame))
	}
	if frame[0] != UBXSync1 || frame[1] != UBXSync2 {
		return Packet{}, false, fmt.Errorf("ubx: bad sync 0x%02x 0x%02x", frame[0], frame[1])
	}
	n := int(frame[4]) | int(frame[5])<<8
	if len(frame) < ubxOverhead+n {
		return Packet{}, false, fmt.Errorf("ubx: truncated payload: have %d want %d", len(frame)-ubxOverhead, n)
	}
	end := 6 + n
	a, b := UBXChecksum(frame[:end])
	payload := make([]byte, n)
	copy(payload, frame[6:end])
	pkt = Packet{Class: frame[2], ID: frame[3], Payload: payload}
	return pkt, a == frame[end] && b == frame[end+1], nil
}

// Frame is a packet found by ScanUBX.
type Frame struct {
	Packet
	Offset     int
	ChecksumOK bool
}

// ScanUBX walks data and returns every structurally complete packet in order.
// Bytes between packets (interleaved NMEA, noise) are skipped. A truncated
// packet at the end of data is dropped.
func ScanUBX(data []byte) []Frame {
	var out []Frame
	for i := 0; i+1 < len(data); {
		if data[i] != UBXSync1 || data[i+1] != UBXSync2 {
			i++
			continue
		}
		pkt, ok, err := DecodeUBX(data[i:])
		if err != nil {
			i++
			continue
		}
		out = append(out, Frame{Packet: pkt, Offset: i, ChecksumOK: ok})
		i += ubxOverhead + len(pkt.Payload)
	}
	return out
}
