// Package lzx implements the variant-dispatched Exchange column
// decompressor: the 7-bit dictionary forms and the MS-XCA LZXPRESS plain
// LZ77 form, per spec.md §4.1. The byte-level algorithm is grounded on
// original_source/lzxpress.py's decompress_lzxpress, ported from its
// bytearray/struct-based Python into Go's slice/encoding-binary idiom.
package lzx

import "fmt"

// Variant identifies the compression-type marker byte Exchange prefixes
// every compressed column with.
type Variant byte

const (
	Variant7BitASCII   Variant = 0x10
	Variant7BitUTF16   Variant = 0x12
	Variant7BitAlt     Variant = 0x15
	VariantUncompressed Variant = 0x17
	VariantLZXPRESS    Variant = 0x18
	VariantLZXPRESSBig Variant = 0x19
)

// ErrUnsupported is returned for a dispatch byte outside the known variant
// set.
type ErrUnsupported struct{ Marker byte }

func (e *ErrUnsupported) Error() string {
	return fmt.Sprintf("lzx: unsupported compression marker 0x%02x", e.Marker)
}

// ErrMalformed is returned when the declared output length cannot be met,
// or a match offset reaches before the start of output.
type ErrMalformed struct{ Reason string }

func (e *ErrMalformed) Error() string { return "lzx: malformed input: " + e.Reason }

// Decompress dispatches on data[0] and decodes the Exchange-compressed
// column per spec.md §4.1's dispatch table. An empty input decompresses to
// an empty output.
func Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	marker := data[0]
	switch Variant(marker) {
	case Variant7BitASCII, Variant7BitAlt:
		// 0x15 is decoded exactly like 0x10; this is unverified against 0x15-bearing sample data.
		return decode7Bit(data[1:], false)
	case Variant7BitUTF16:
		return decode7Bit(data[1:], true)
	case VariantUncompressed:
		return data[1:], nil
	case VariantLZXPRESS:
		if len(data) < 3 {
			return nil, &ErrMalformed{"0x18 header truncated"}
		}
		outLen := int(uint16(data[1]) | uint16(data[2])<<8)
		return DecompressLZXPRESS(data[3:], outLen)
	case VariantLZXPRESSBig:
		if len(data) < 5 {
			return nil, &ErrMalformed{"0x19 header truncated"}
		}
		outLen := int(uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16 | uint32(data[4])<<24)
		return DecompressLZXPRESS(data[5:], outLen)
	default:
		return nil, &ErrUnsupported{Marker: marker}
	}
}
