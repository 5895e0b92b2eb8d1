package framing

import (
	"bytes"
	"testing"
)

func TestEscape_Format(t *testing.T) {
	got := Escape([]byte{0xB5, 0x62, 0x0A, 0x04, 0x00, 0x00, 0x0E, 0x34})
	want := `\xb5\x62\x0a\x04\x00\x00\x0e\x34`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestEscape_BijectionAllBytes(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	text := Escape(all)
	if len(text) != 4*256 {
		t.Fatalf("len=%d want %d", len(text), 4*256)
	}
	back, err := Unescape(text)
	if err != nil {
		t.Fatalf("Unescape: %v", err)
	}
	if !bytes.Equal(back, all) {
		t.Fatalf("round trip mismatch")
	}
}

func TestUnescape_AcceptsUppercase(t *testing.T) {
	got, err := Unescape(`\xB5\x62`)
	if err != nil {
		t.Fatalf("Unescape: %v", err)
	}
	if !bytes.Equal(got, []byte{0xB5, 0x62}) {
		t.Fatalf("got % X", got)
	}
}

func TestUnescape_Rejects(t *testing.T) {
	for _, in := range []string{`\xb`, `/xb5`, `\yb5`, `\xzz`} {
		if _, err := Unescape(in); err == nil {
			t.Fatalf("Unescape(%q): expected error", in)
		}
	}
}

func TestEscape_Empty(t *testing.T) {
	if got := Escape(nil); got != "" {
		t.Fatalf("got %q want empty", got)
	}
	got, err := Unescape("")
	if err != nil || len(got) != 0 {
		t.Fatalf("Unescape(\"\")=%v, %v", got, err)
	}
}
