package bytesx

import (
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// UTF16LEToString decodes a UTF-16LE byte sequence, substituting U+FFFD for
// malformed surrogate pairs rather than failing. Trailing NUL code units
// (the common Exchange string terminator) are stripped.
func UTF16LEToString(b []byte) string {
	if len(b)%2 != 0 && len(b) > 0 {
		b = b[:len(b)-1]
	}
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])|uint16(b[i+1])<<8)
	}
	for len(units) > 0 && units[len(units)-1] == 0 {
		units = units[:len(units)-1]
	}
	return string(utf16.Decode(units))
}

// StringToUTF16LE encodes s as UTF-16LE with no BOM and no terminator, the
// PST writer's string-property encoding rule (LTP §4.6).
func StringToUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(units)*2)
	for _, u := range units {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}

// Codepage identifies a legacy single-byte encoding candidate for body text
// that failed strict UTF-8 decoding.
type Codepage int

const (
	// CodepageWindows1252 is the default Western European fallback.
	CodepageWindows1252 Codepage = iota
	// CodepageWindows1251 is the Cyrillic fallback preferred by Outlook on
	// Russian-locale Exchange servers.
	CodepageWindows1251
	// CodepageKOI8R is the alternate Cyrillic encoding seen on some legacy
	// Unix-originated mail gateways relayed through Exchange.
	CodepageKOI8R
)

// DecodeLegacyBody decodes raw bytes using the given codepage via
// golang.org/x/text/encoding/charmap, substituting U+FFFD for bytes with no
// mapping. DetectCyrillicCodepage (entity package) picks the codepage; this
// function only performs the mechanical decode.
func DecodeLegacyBody(b []byte, cp Codepage) string {
	var dec = charmap.Windows1252.NewDecoder()
	switch cp {
	case CodepageWindows1251:
		dec = charmap.Windows1251.NewDecoder()
	case CodepageKOI8R:
		dec = charmap.KOI8R.NewDecoder()
	}
	out, err := dec.Bytes(b)
	if err != nil {
		// charmap decoders are total functions in practice (single-byte
		// tables always map something); a decode error here indicates a
		// writer bug upstream, not bad input, so fall back to replacement
		// runes rather than propagating an error from a "decode" helper.
		return strictUTF8OrReplace(b)
	}
	return string(out)
}

// strictUTF8OrReplace decodes b as UTF-8, substituting U+FFFD rune-by-rune
// for any invalid byte sequence rather than failing outright, matching
// spec.md's "decoding errors substitute U+FFFD" invariant.
func strictUTF8OrReplace(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out := make([]rune, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		out = append(out, r)
		b = b[size:]
	}
	return string(out)
}

// DecodeUTF8OrReplace decodes b as UTF-8 strictly, substituting U+FFFD for
// invalid sequences instead of failing. Used as the first probe in the
// encoding-detection chain before falling back to codepage heuristics.
func DecodeUTF8OrReplace(b []byte) (s string, wasValid bool) {
	return strictUTF8OrReplace(b), utf8.Valid(b)
}
