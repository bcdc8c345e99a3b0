package lzx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// compressLiteralsOnly is a trivial reference compressor that emits every
// byte as a literal — enough to exercise the flag-word/bit-consumption
// plumbing without needing a full LZ77 matcher (spec.md §8 property 1
// allows a mocked reference compressor).
func compressLiteralsOnly(data []byte) []byte {
	var out []byte
	for i := 0; i < len(data); i += 32 {
		chunk := data[i:]
		if len(chunk) > 32 {
			chunk = chunk[:32]
		}
		out = append(out, 0, 0, 0, 0) // all-literal flag word
		out = append(out, chunk...)
	}
	return out
}

func TestDecompressLZXPRESS_S4HelloWorld(t *testing.T) {
	want := []byte("Hello World")
	compressed := compressLiteralsOnly(want)

	header := []byte{0x18, byte(len(want)), byte(len(want) >> 8)}
	data := append(header, compressed...)

	got, err := Decompress(data)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDecompressLZXPRESS_RoundTripLiterals(t *testing.T) {
	want := []byte("the quick brown fox jumps over the lazy dog, repeatedly, to pad this out")
	compressed := compressLiteralsOnly(want)

	got, err := DecompressLZXPRESS(compressed, len(want))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDecompressLZXPRESS_BackReference(t *testing.T) {
	// "abcabc" encoded as literal "abc" followed by a match of length 3,
	// offset 3 (matchData = (offset-1)<<3 | (length-3) = 2<<3|0 = 0x10).
	var payload []byte
	payload = append(payload, 0x08, 0, 0, 0) // bits 0-2 literal, bit 3 match
	payload = append(payload, 'a', 'b', 'c')
	payload = append(payload, 0x10, 0x00) // match metadata, little-endian

	got, err := DecompressLZXPRESS(payload, 6)
	require.NoError(t, err)
	require.Equal(t, []byte("abcabc"), got)
}

func TestDecompress_S6MalformedShortOutput(t *testing.T) {
	// Header claims 100 bytes but payload only supplies 50.
	payload := compressLiteralsOnly(make([]byte, 50))
	header := []byte{0x18, 100, 0}
	data := append(header, payload...)

	_, err := Decompress(data)
	require.Error(t, err)
	var malformed *ErrMalformed
	require.ErrorAs(t, err, &malformed)
}

func TestDecompress_UncompressedVariant(t *testing.T) {
	data := append([]byte{0x17}, []byte("raw payload")...)
	got, err := Decompress(data)
	require.NoError(t, err)
	require.Equal(t, []byte("raw payload"), got)
}

func TestDecompress_UnsupportedMarker(t *testing.T) {
	_, err := Decompress([]byte{0xAA, 1, 2, 3})
	require.Error(t, err)
	var unsupported *ErrUnsupported
	require.ErrorAs(t, err, &unsupported)
}

func TestDecompress_Empty(t *testing.T) {
	got, err := Decompress(nil)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestDecode7Bit_S2SenderName(t *testing.T) {
	// "JOHN DOE" packed 7 bits per character, LSB-first, ASCII variant.
	packed := pack7Bit([]byte("JOHN DOE"))
	data := append([]byte{0x10}, packed...)

	got, err := Decompress(data)
	require.NoError(t, err)
	require.Equal(t, []byte("JOHN DOE"), got)
}

func TestDecode7Bit_UTF16DoesNotTruncateOnZeroHighByte(t *testing.T) {
	// "Hi" in UTF-16LE: 0x48,0x00,0x69,0x00 — every character here has a
	// zero high byte, which a per-octet terminator check mistakes for the
	// end of string after the very first code unit. The 0x12 terminator is
	// a full zero code unit (two zero 7-bit groups), so pack7Bit's single
	// auto-appended zero group needs one more explicit zero byte ahead of
	// it to form that pair.
	utf16Bytes := []byte{0x48, 0x00, 0x69, 0x00}
	packed := pack7Bit(append(append([]byte{}, utf16Bytes...), 0x00))
	data := append([]byte{0x12}, packed...)

	got, err := Decompress(data)
	require.NoError(t, err)
	require.Equal(t, utf16Bytes, got)
}

// pack7Bit is the test-only reference encoder for decode7Bit, packing each
// input byte's low 7 bits LSB-first with a trailing zero terminator group.
func pack7Bit(data []byte) []byte {
	var acc uint32
	var bits uint
	var out []byte

	flush := func() {
		for bits >= 8 {
			out = append(out, byte(acc))
			acc >>= 8
			bits -= 8
		}
	}

	for _, b := range data {
		acc |= uint32(b&0x7F) << bits
		bits += 7
		flush()
	}
	// terminator: one more all-zero 7-bit group
	acc |= 0 << bits
	bits += 7
	flush()
	if bits > 0 {
		out = append(out, byte(acc))
	}
	return out
}
