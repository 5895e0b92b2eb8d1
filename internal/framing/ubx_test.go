package framing

import (
	"bytes"
	"testing"
)

func TestEncodeUBX_MonVerPoll(t *testing.T) {
	got := EncodeUBX(ClassMON, IDMonVer, nil)
	want := []byte{0xB5, 0x62, 0x0A, 0x04, 0x00, 0x00, 0x0E, 0x34}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % X want % X", got, want)
	}
}

func TestUBXChecksum_SkipsSyncBytes(t *testing.T) {
	a1, b1 := UBXChecksum([]byte{0xB5, 0x62, 0x0A, 0x04, 0x00, 0x00})
	a2, b2 := UBXChecksum([]byte{0x00, 0x00, 0x0A, 0x04, 0x00, 0x00})
	if a1 != a2 || b1 != b2 {
		t.Fatalf("sync bytes affected checksum: %02X%02X vs %02X%02X", a1, b1, a2, b2)
	}
}

func TestUBXChecksum_Wraps(t *testing.T) {
	pkt := []byte{UBXSync1, UBXSync2}
	for i := 0; i < 300; i++ {
		pkt = append(pkt, 0xFF)
	}
	var wantA, wantB int
	for _, c := range pkt[2:] {
		wantA = (wantA + int(c)) % 256
		wantB = (wantB + wantA) % 256
	}
	a, b := UBXChecksum(pkt)
	if int(a) != wantA || int(b) != wantB {
		t.Fatalf("got %02X %02X want %02X %02X", a, b, wantA, wantB)
	}
}

func TestUBXChecksum_RecomputeMatchesAppended(t *testing.T) {
	payload := []byte{0x00, 0x01, 0x00, 0x00, 0x32, 0x00, 0x00, 0x00}
	pkt := EncodeUBX(ClassCFG, IDCfgTP5, payload)
	a, b := UBXChecksum(pkt[:len(pkt)-2])
	if pkt[len(pkt)-2] != a || pkt[len(pkt)-1] != b {
		t.Fatalf("recomputed %02X %02X, appended %02X %02X", a, b, pkt[len(pkt)-2], pkt[len(pkt)-1])
	}
	if pkt[4] != byte(len(payload)) || pkt[5] != 0 {
		t.Fatalf("length bytes % X", pkt[4:6])
	}
}

func TestDecodeUBX_RoundTrip(t *testing.T) {
	payload := []byte("ROM CORE 3.01 (107888)")
	frame := EncodeUBX(ClassMON, IDMonVer, payload)
	frame = append(frame, 0xB5) // trailing garbage is ignored

	pkt, ok, err := DecodeUBX(frame)
	if err != nil {
		t.Fatalf("DecodeUBX: %v", err)
	}
	if !ok {
		t.Fatalf("expected checksum ok")
	}
	if pkt.Class != ClassMON || pkt.ID != IDMonVer {
		t.Fatalf("class/id=%02X/%02X", pkt.Class, pkt.ID)
	}
	if !bytes.Equal(pkt.Payload, payload) {
		t.Fatalf("payload=%q want %q", pkt.Payload, payload)
	}
}

func TestDecodeUBX_ReportsBadChecksum(t *testing.T) {
	frame := EncodeUBX(ClassMON, IDMonHW, []byte{1, 2, 3})
	frame[len(frame)-1] ^= 0xFF
	_, ok, err := DecodeUBX(frame)
	if err != nil {
		t.Fatalf("DecodeUBX: %v", err)
	}
	if ok {
		t.Fatalf("expected checksum mismatch")
	}
}

func TestDecodeUBX_Malformed(t *testing.T) {
	cases := map[string][]byte{
		"short":     {0xB5, 0x62, 0x0A},
		"bad sync":  {0xB5, 0x63, 0x0A, 0x04, 0x00, 0x00, 0x0E, 0x34},
		"truncated": {0xB5, 0x62, 0x0A, 0x04, 0x05, 0x00, 0x01, 0x02},
	}
	for name, frame := range cases {
		if _, _, err := DecodeUBX(frame); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
