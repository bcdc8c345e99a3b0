package propblob

import "strings"

// JoinDisplayTo joins a RecipientList's name->email map against the
// comma/semicolon-tokenized DisplayTo/Cc/Bcc column value, producing the
// final recipient list for a message (spec.md §4.2). Names that have no
// match in recipients keep Email == "".
func JoinDisplayTo(displayTo string, recipients []Recipient) []Recipient {
	if displayTo == "" {
		return nil
	}

	byName := make(map[string]string, len(recipients))
	for _, r := range recipients {
		byName[normalizeName(r.Name)] = r.Email
	}

	var out []Recipient
	for _, tok := range splitDisplayTo(displayTo) {
		name := strings.TrimSpace(tok)
		if name == "" {
			continue
		}
		out = append(out, Recipient{Name: name, Email: byName[normalizeName(name)]})
	}
	return out
}

func splitDisplayTo(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ','
	})
}

func normalizeName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
