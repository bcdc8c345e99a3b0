package lzx

// decode7Bit implements the 7-bit dictionary decoder used for the
// 0x10/0x12/0x15 markers (spec.md §4.1): an LSB-first bit-stream where
// every 7 bits produces one octet with its high bit cleared. Decoding stops
// when the bit-stream is exhausted or a terminator is produced (the
// documented terminator in the absence of an explicit output-length header
// for these variants). For the 0x10/0x15 (ASCII) markers the terminator is
// a single zero octet. For the 0x12 (UTF-16) marker the decoded octets ARE
// the UTF-16LE byte stream, two octets per code unit — callers decode the
// result with bytesx.UTF16LEToString rather than as ASCII — so the
// terminator must be a fully-zero code *unit*, not a zero octet: a
// character whose high byte happens to be zero (every code point below
// U+0080) would otherwise truncate the string after its low byte.
func decode7Bit(payload []byte, utf16 bool) ([]byte, error) {
	var out []byte

	var acc uint32
	var bits uint
	pos := 0

	for {
		for bits < 7 && pos < len(payload) {
			acc |= uint32(payload[pos]) << bits
			bits += 8
			pos++
		}
		if bits < 7 {
			// Fewer than 7 bits left anywhere in the stream: end of input.
			break
		}

		v := byte(acc & 0x7F)
		acc >>= 7
		bits -= 7

		if !utf16 {
			if v == 0 {
				break
			}
			out = append(out, v)
			continue
		}

		out = append(out, v)
		if n := len(out); n%2 == 0 && out[n-2] == 0 && out[n-1] == 0 {
			out = out[:n-2]
			break
		}
	}

	return out, nil
}
