package framing

import (
	"fmt"
	"strconv"
	"strings"
)

const hexDigits = "0123456789abcdef"

// Escape renders every byte as a four-character `\xNN` sequence with no
// separator. This is the text form binary packets take on their way through
// the transport.
func Escape(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 4)
	for _, c := range b {
		sb.WriteByte('\\')
		sb.WriteByte('x')
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0F])
	}
	return sb.String()
}

// Unescape reverses Escape. Hex digits may be either case; any other input
// is rejected.
func Unescape(s string) ([]byte, error) {
	if len(s)%4 != 0 {
		return nil, fmt.Errorf("escape: length %d is not a multiple of 4", len(s))
	}
	out := make([]byte, 0, len(s)/4)
	for i := 0; i < len(s); i += 4 {
		if s[i] != '\\' || s[i+1] != 'x' {
			return nil, fmt.Errorf("escape: expected \\x at offset %d", i)
		}
		v, err := strconv.ParseUint(s[i+2:i+4], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("escape: bad hex %q at offset %d", s[i+2:i+4], i)
		}
		out = append(out, byte(v))
	}
	return out, nil
}
