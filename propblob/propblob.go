// Package propblob recovers message fields from the undocumented,
// semi-structured PropertyBlob / RecipientList byte layout by marker and
// sentinel scanning, grounded on original_source/analyze_mailbox.py's
// extract_subject (M-marker + length-byte + ASCII scan) and
// original_source/src/core/exchange_parser.py's _parse_property_blob
// (email-pattern regex scan, UTF-16LE fallback).
package propblob

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sensepost/edbxtract/bytesx"
	"github.com/sensepost/edbxtract/diag"
)

// Fields holds everything extractable from a single message's PropertyBlob.
type Fields struct {
	SenderName  string
	Subject     string
	SenderEmail string
	MessageID   string
}

var (
	emailPattern     = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	messageIDPattern = regexp.MustCompile(`<[^<>@]+@[^<>]+>`)
)

// Parse extracts Fields from a decompressed PropertyBlob. table/row identify
// the record for diagnostics; a malformed or empty blob never fails the
// overall extraction (spec.md §4.2 edge case (c)) — it simply yields a zero
// Fields and, where useful, a recoverable *diag.Error describing the shape
// that did not match.
func Parse(blob []byte, table string, row int) (Fields, *diag.Error) {
	var f Fields
	if len(blob) < 4 {
		return f, nil
	}

	senderName, dn := extractSenderName(blob)
	f.SenderName = senderName

	if subject, ok := extractSubject(blob, dn); ok {
		f.Subject = subject
	} else if dn != "" {
		return f, diag.New(diag.KindUnexpectedPropertyBlob, table, "subject sentinel not found for sender-name prefixes").WithRow(row, "PropertyBlob")
	}

	// The sender email is looked for after the subject payload first, so a
	// subject that runs straight into the address is not taken as part of
	// its local part; the whole blob is the fallback.
	emailRegion := blob
	if f.Subject != "" {
		if i := strings.Index(string(blob), f.Subject); i >= 0 {
			emailRegion = blob[i+len(f.Subject):]
		}
	}
	f.SenderEmail = extractSenderEmail(emailRegion)
	if f.SenderEmail == "" {
		f.SenderEmail = extractSenderEmail(blob)
	}
	f.MessageID = extractMessageID(blob)

	return f, nil
}

// extractSenderName reads the CN legacy-DN path
// (/o=.../cn=Recipients/cn=<GUID>-<SENDER_NAME>), returning the recovered
// display name (capitalized per spec.md scenario S2) and the raw uppercase
// tail used to locate the subject sentinel.
//
// The tail runs up to the next non-name terminator: a control byte/NUL, or
// the start of an M/I subject sentinel directly abutting the name with no
// separator (spec.md §8 scenario S2's "JOHN DOEM\x05Hi all" has no NUL
// between the name and the marker at all).
func extractSenderName(blob []byte) (name string, upperTail string) {
	idx := strings.LastIndex(string(blob), "-")
	if idx < 0 || idx+1 >= len(blob) {
		return "", ""
	}
	tail := blob[idx+1:]

	end := len(tail)
	for i, b := range tail {
		if b < 0x20 || b == 0x00 {
			end = i
			break
		}
		if (b == 'M' || b == 'I') && looksLikeSentinel(tail, i+1, b == 'I') {
			end = i
			break
		}
	}
	upper := string(tail[:end])
	if upper == "" {
		return "", ""
	}
	return capitalizeWords(upper), upper
}

// looksLikeSentinel reports whether pos begins a plausible M/I sentinel
// payload immediately following a marker byte: an in-bounds VLQ length
// followed by that many (M, UTF-8) or twice that many (I, UTF-16LE) bytes
// that look like real text. Used to tell an actual sentinel boundary apart
// from an M or I that is simply the next letter of the name.
func looksLikeSentinel(tail []byte, pos int, utf16 bool) bool {
	length, next, ok := readVLQ(tail, pos)
	if !ok || length > 16*1024 {
		return false
	}
	byteLen := length
	if utf16 {
		byteLen = length * 2
	}
	if next+byteLen > len(tail) {
		return false
	}
	if byteLen == 0 {
		return true
	}
	if utf16 {
		return true
	}
	return isMostlyPrintable(tail[next : next+byteLen])
}

func capitalizeWords(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		runes := []rune(w)
		if len(runes) == 0 {
			continue
		}
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// extractSubject locates the `<SENDER_NAME_UPPERCASE>M` or `...I` sentinel,
// reading a VLQ length followed by the UTF-8 (M) or UTF-16LE (I) payload.
// Per spec.md §4.2, if the full uppercase name is not found it retries with
// progressively shorter prefixes, preferring the longest match.
func extractSubject(blob []byte, senderNameUpper string) (string, bool) {
	prefixes := uppercasePrefixes(senderNameUpper)
	for _, prefix := range prefixes {
		if prefix == "" {
			continue
		}
		if subject, ok := findSentinelSubject(blob, prefix); ok {
			return subject, true
		}
	}
	return "", false
}

// uppercasePrefixes returns the full uppercased name followed by
// progressively shorter whitespace-delimited prefixes, longest first.
func uppercasePrefixes(name string) []string {
	upper := strings.ToUpper(name)
	words := strings.Fields(upper)
	if len(words) == 0 {
		return nil
	}
	var out []string
	for i := len(words); i > 0; i-- {
		out = append(out, strings.Join(words[:i], " "))
	}
	return out
}

func findSentinelSubject(blob []byte, prefix string) (string, bool) {
	needleM := []byte(prefix + "M")
	needleI := []byte(prefix + "I")

	if subject, ok := readVLQPayload(blob, needleM, false); ok {
		return subject, true
	}
	if subject, ok := readVLQPayload(blob, needleI, true); ok {
		return subject, true
	}
	return "", false
}

// readVLQPayload finds needle in blob, decodes the VLQ length that follows
// it, and decodes the payload as UTF-8 (utf16=false) or UTF-16LE
// (utf16=true). The VLQ is little-endian base-128: a byte with the high bit
// set contributes its low 7 bits and signals continuation; the first byte
// with the high bit clear terminates the value (spec.md §9 Open Question
// resolution). A decoded length exceeding 16 KiB is rejected as malformed.
func readVLQPayload(blob []byte, needle []byte, utf16 bool) (string, bool) {
	idx := indexAll(blob, needle)
	for _, at := range idx {
		pos := at + len(needle)
		length, next, ok := readVLQ(blob, pos)
		if !ok || length > 16*1024 {
			continue
		}
		byteLen := length
		if utf16 {
			byteLen = length * 2
		}
		if next+byteLen > len(blob) {
			continue
		}
		payload := blob[next : next+byteLen]
		if utf16 {
			return bytesx.UTF16LEToString(payload), true
		}
		if !isMostlyPrintable(payload) {
			continue
		}
		return string(payload), true
	}
	return "", false
}

func indexAll(blob, needle []byte) []int {
	var out []int
	start := 0
	for {
		i := indexFrom(blob, needle, start)
		if i < 0 {
			break
		}
		out = append(out, i)
		start = i + 1
	}
	return out
}

func indexFrom(blob, needle []byte, from int) int {
	if from >= len(blob) {
		return -1
	}
	i := strings.Index(string(blob[from:]), string(needle))
	if i < 0 {
		return -1
	}
	return from + i
}

func readVLQ(blob []byte, pos int) (value int, next int, ok bool) {
	shift := uint(0)
	for pos < len(blob) {
		b := blob[pos]
		pos++
		value |= int(b&0x7F) << shift
		if b&0x80 == 0 {
			return value, pos, true
		}
		shift += 7
		if shift > 21 {
			return 0, 0, false
		}
	}
	return 0, 0, false
}

func isMostlyPrintable(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < 0x20 && c != '\t' {
			return false
		}
	}
	return true
}

// extractSenderEmail returns the first local-part@domain match in blob. It
// matches on the raw bytes and does not check that the match is the payload
// of an M-entry.
func extractSenderEmail(blob []byte) string {
	m := emailPattern.Find(blob)
	if m == nil {
		return ""
	}
	return string(m)
}

// extractMessageID returns the first `<...@...>`-shaped entry in the blob.
func extractMessageID(blob []byte) string {
	m := messageIDPattern.Find(blob)
	if m == nil {
		return ""
	}
	return string(m)
}
