package framing

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// NMEAChecksum XOR-folds every byte of body. body is the text strictly
// between '$' and '*'.
func NMEAChecksum(body string) byte {
	ck := byte(0)
	for i := 0; i < len(body); i++ {
		ck ^= body[i]
	}
	return ck
}

// AddNMEAChecksum appends the two uppercase hex digits of the sentence
// checksum after the trailing '*'. A sentence without '*' gets one appended.
// Anything after an existing '*' is replaced.
func AddNMEAChecksum(sentence string) (string, error) {
	if !strings.HasPrefix(sentence, "$") {
		return "", fmt.Errorf("nmea: missing '$'")
	}
	star := strings.LastIndexByte(sentence, '*')
	if star == -1 {
		star = len(sentence)
	}
	body := sentence[1:star]
	return fmt.Sprintf("$%s*%02X", body, NMEAChecksum(body)), nil
}

// VerifyNMEA checks a received sentence against its own checksum. The device
// layer never calls this on inbound traffic; it is here for callers that want
// to validate what they drained.
func VerifyNMEA(sentence string) error {
	sentence = strings.TrimSpace(sentence)
	if !strings.HasPrefix(sentence, "$") {
		return fmt.Errorf("nmea: missing '$'")
	}
	star := strings.LastIndexByte(sentence, '*')
	if star == -1 {
		return fmt.Errorf("nmea: missing checksum")
	}
	ck := sentence[star+1:]
	if len(ck) < 2 {
		return fmt.Errorf("nmea: short checksum")
	}
	want, err := hex.DecodeString(ck[:2])
	if err != nil || len(want) != 1 {
		return fmt.Errorf("nmea: bad checksum")
	}
	if got := NMEAChecksum(sentence[1:star]); got != want[0] {
		return fmt.Errorf("nmea: checksum mismatch got=%02X want=%02X", got, want[0])
	}
	return nil
}
