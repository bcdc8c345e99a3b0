package entity

import (
	"github.com/sensepost/edbxtract/bytesx"
)

// DecodeBody implements spec.md §4.3's encoding-detection heuristic for
// legacy code-page bodies: try UTF-8 strict; on failure probe for Cyrillic
// signatures (byte frequency in 0xC0..0xFF) and pick Windows-1251 vs KOI8-R
// by whichever decode yields the higher ratio of printable/common Cyrillic
// letters; otherwise fall back to Windows-1252.
func DecodeBody(raw []byte) string {
	if s, ok := bytesx.DecodeUTF8OrReplace(raw); ok {
		return s
	}

	if looksCyrillic(raw) {
		win1251 := bytesx.DecodeLegacyBody(raw, bytesx.CodepageWindows1251)
		koi8r := bytesx.DecodeLegacyBody(raw, bytesx.CodepageKOI8R)
		if cyrillicLetterRatio(koi8r) > cyrillicLetterRatio(win1251) {
			return koi8r
		}
		return win1251
	}

	return bytesx.DecodeLegacyBody(raw, bytesx.CodepageWindows1252)
}

// looksCyrillic estimates Cyrillic-codepage likelihood from the raw byte
// frequency in the high range shared by Windows-1251 and KOI8-R Cyrillic
// letter blocks.
func looksCyrillic(raw []byte) bool {
	if len(raw) == 0 {
		return false
	}
	highCount := 0
	for _, b := range raw {
		if b >= 0xC0 {
			highCount++
		}
	}
	return float64(highCount)/float64(len(raw)) > 0.3
}

// cyrillicLetterRatio scores a decoded string by the fraction of runes in
// the Cyrillic Unicode block (U+0400-U+04FF), used to pick between two
// rival codepage decodes of the same bytes.
func cyrillicLetterRatio(decoded string) float64 {
	if decoded == "" {
		return 0
	}
	total := 0
	cyrillic := 0
	for _, r := range decoded {
		total++
		if r >= 0x0400 && r <= 0x04FF {
			cyrillic++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(cyrillic) / float64(total)
}
