package exportfmt

import (
	"strings"

	"github.com/sensepost/edbxtract/entity"
)

// WriteVCF renders one contact as a vCard 3.0 document, per spec.md §4.8's
// "vCard" bullet ([RFC 2426]/vCard 3.0: FN, N, EMAIL, TEL, ORG, TITLE,
// ADR).
func WriteVCF(c entity.Contact) string {
	var b strings.Builder
	writeLine(&b, "BEGIN:VCARD")
	writeLine(&b, "VERSION:3.0")
	writeLine(&b, "FN:"+vcfEscape(c.DisplayName))
	writeLine(&b, "N:"+reverseName(c.DisplayName))

	for _, email := range c.Emails {
		if email == "" {
			continue
		}
		writeLine(&b, "EMAIL;TYPE=INTERNET:"+vcfEscape(email))
	}
	for _, phone := range c.Phones {
		if phone.Value == "" {
			continue
		}
		writeLine(&b, "TEL;TYPE="+vcfPhoneType(phone.Kind)+":"+vcfEscape(phone.Value))
	}
	if c.Company != "" {
		writeLine(&b, "ORG:"+vcfEscape(c.Company))
	}
	if c.Title != "" {
		writeLine(&b, "TITLE:"+vcfEscape(c.Title))
	}
	for _, addr := range c.Addresses {
		if addr == "" {
			continue
		}
		writeLine(&b, "ADR;TYPE=WORK:;;"+vcfEscape(addr)+";;;;")
	}

	writeLine(&b, "END:VCARD")
	return b.String()
}

func vcfPhoneType(kind string) string {
	switch strings.ToLower(kind) {
	case "mobile", "cell":
		return "CELL"
	case "home":
		return "HOME"
	default:
		return "WORK"
	}
}

// reverseName derives a vCard N field ("Family;Given;;;") from a display
// name, splitting on the last whitespace run. Names with no whitespace are
// treated as the family name with no given name. Each component is
// TEXT-escaped; the separating semicolons are not.
func reverseName(displayName string) string {
	fields := strings.Fields(displayName)
	if len(fields) == 0 {
		return ";;;;"
	}
	if len(fields) == 1 {
		return vcfEscape(fields[0]) + ";;;;"
	}
	family := fields[len(fields)-1]
	given := strings.Join(fields[:len(fields)-1], " ")
	return vcfEscape(family) + ";" + vcfEscape(given) + ";;;"
}

// vcfEscape applies [RFC 2426]'s TEXT escaping: backslash, comma, and
// semicolon are backslash-escaped, newlines become literal "\n".
func vcfEscape(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`;`, `\;`,
		`,`, `\,`,
		"\n", `\n`,
		"\r", "",
	)
	return r.Replace(s)
}
