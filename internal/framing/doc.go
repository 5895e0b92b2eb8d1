package framing

// Package framing holds the pure checksum and framing routines shared by the
// device capabilities:
// - NMEA XOR checksums for `$...*HH` sentences
// - UBX two-accumulator checksums, packet encode/decode
// - `\xNN` escaping used to move binary packets through the text transport
