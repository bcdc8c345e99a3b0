package propblob

import (
	"bytes"
)

// Recipient is one entry in a RecipientList blob's ordered name->email map.
type Recipient struct {
	Name  string
	Email string
}

// ParseRecipientList splits a decompressed RecipientList blob into its
// per-recipient sub-blocks (each led by a "ProP" fourcc) and extracts the
// display name (via the `<DISPLAYNAME>M` sentinel) and email (the legacy-DN
// inside the "EXM" block, or the final M-entry giving alias@domain) for
// each. Order is preserved; unmatched names keep Email == "" per spec.md
// §4.2.
func ParseRecipientList(blob []byte) []Recipient {
	if len(blob) == 0 {
		return nil
	}

	marker := []byte("ProP")
	starts := indexAll(blob, marker)
	if len(starts) == 0 {
		return nil
	}

	var out []Recipient
	for i, start := range starts {
		end := len(blob)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		sub := blob[start:end]
		out = append(out, parseRecipientSubBlock(sub))
	}
	return out
}

func parseRecipientSubBlock(sub []byte) Recipient {
	var r Recipient

	name, upperName := extractDisplayName(sub)
	r.Name = name

	if email := extractEXMEmail(sub); email != "" {
		r.Email = email
		return r
	}

	if upperName != "" {
		if subject, ok := findSentinelSubject(sub, upperName); ok && isEmailShaped(subject) {
			r.Email = subject
		}
	}
	if r.Email == "" {
		if m := emailPattern.Find(sub); m != nil {
			r.Email = string(m)
		}
	}
	return r
}

// extractDisplayName reads the `<DISPLAYNAME>M` sentinel's payload by
// scanning for an 'M' marker preceded by an all-caps run, mirroring
// extractSenderName's CN legacy-DN convention but for recipient sub-blocks
// which carry the display name directly rather than behind a DN path.
func extractDisplayName(sub []byte) (name string, upper string) {
	idx := bytes.IndexByte(sub, 'M')
	for idx >= 0 {
		start := idx
		for start > 0 && isNameByte(sub[start-1]) {
			start--
		}
		if start < idx {
			candidate := string(sub[start:idx])
			if isAllUpper(candidate) {
				return capitalizeWords(candidate), candidate
			}
		}
		next := bytes.IndexByte(sub[idx+1:], 'M')
		if next < 0 {
			break
		}
		idx = idx + 1 + next
	}
	return "", ""
}

func isNameByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || b == ' ' || b == '.'
}

func isAllUpper(s string) bool {
	for _, c := range s {
		if c >= 'a' && c <= 'z' {
			return false
		}
	}
	return len(s) > 0
}

// extractEXMEmail finds the "EXM" block and returns its trailing
// alias@domain M-entry.
func extractEXMEmail(sub []byte) string {
	at := bytes.Index(sub, []byte("EXM"))
	if at < 0 {
		return ""
	}
	rest := sub[at+3:]
	if m := emailPattern.Find(rest); m != nil {
		return string(m)
	}
	return ""
}

func isEmailShaped(s string) bool {
	return emailPattern.MatchString(s)
}
