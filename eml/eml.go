// Package eml translates an RFC 5322 / MIME message into a MAPI property
// map keyed by proptag.Tag, grounded on
// inbucket-inbucket/filestore/fmessage.go's ReadBody (enmime.ReadEnvelope
// over a buffered reader) and pkg/message/message.go's Metadata extraction
// from the parsed envelope.
package eml

import (
	"io"
	"strings"

	"github.com/jhillyerd/enmime/v2"

	"github.com/sensepost/edbxtract/bytesx"
	"github.com/sensepost/edbxtract/diag"
	"github.com/sensepost/edbxtract/proptag"
)

// RecipientProp is one recipient row destined for the Recipients TC: a
// display name, address, and PR_RECIPIENT_TYPE.
type RecipientProp struct {
	Name    string
	Address string
	Type    proptag.RecipientType
}

// AttachmentProp is one attachment's MAPI property set.
type AttachmentProp struct {
	Filename string
	MimeTag  string
	Data     []byte
}

// Translated holds the MAPI property map and structured recipient/attachment
// rows produced from one EML message, per spec.md §4.4's contract.
type Translated struct {
	Properties  map[uint32][]byte
	Recipients  []RecipientProp
	Attachments []AttachmentProp
}

// Translate parses r as an RFC 5322 message and produces its MAPI property
// equivalent. A malformed message is reported via diag.Kind MalformedDatabase
// (reused here for "malformed input document" since spec.md's taxonomy has
// no EML-specific kind).
func Translate(r io.Reader) (*Translated, *diag.Error) {
	envelope, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, diag.Wrap(diag.KindMalformedDatabase, "eml", -1, "", err)
	}

	t := &Translated{Properties: map[uint32][]byte{}}

	setString(t, proptag.PidTagSubject, envelope.GetHeader("Subject"))

	if from, ok := firstAddress(envelope.GetHeader("From")); ok {
		setString(t, proptag.PidTagSenderName, from.Name)
		setString(t, proptag.PidTagSenderEmailAddress, from.Address)
		setString(t, proptag.PidTagSenderAddrType, "SMTP")
	}

	t.Recipients = append(t.Recipients, collectRecipients(envelope, "To", proptag.RecipientTo)...)
	t.Recipients = append(t.Recipients, collectRecipients(envelope, "Cc", proptag.RecipientCc)...)
	t.Recipients = append(t.Recipients, collectRecipients(envelope, "Bcc", proptag.RecipientBcc)...)

	if date, err := envelope.Date(); err == nil && !date.IsZero() {
		ft := bytesx.ToFileTime(date)
		setUint64(t, proptag.PidTagClientSubmitTime, ft)
		setUint64(t, proptag.PidTagMessageDeliveryTime, ft)
	}

	setInt32(t, proptag.PidTagImportance, int32(parseImportance(envelope.GetHeader("Importance"))))

	if envelope.Text != "" {
		setString(t, proptag.PidTagBody, envelope.Text)
	}
	if envelope.HTML != "" {
		t.Properties[proptag.PidTagHTML.Uint32()] = []byte(envelope.HTML)
	}

	for _, a := range envelope.Attachments {
		t.Attachments = append(t.Attachments, AttachmentProp{
			Filename: a.FileName,
			MimeTag:  a.ContentType,
			Data:     bytesCopy(a.Content),
		})
	}

	return t, nil
}

func bytesCopy(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func setString(t *Translated, tag proptag.Tag, value string) {
	if value == "" {
		return
	}
	t.Properties[tag.Uint32()] = bytesx.StringToUTF16LE(value)
}

func setUint64(t *Translated, tag proptag.Tag, value uint64) {
	w := bytesx.NewWriter()
	w.PutUint64(value)
	t.Properties[tag.Uint32()] = w.Bytes()
}

func setInt32(t *Translated, tag proptag.Tag, value int32) {
	w := bytesx.NewWriter()
	w.PutUint32(uint32(value))
	t.Properties[tag.Uint32()] = w.Bytes()
}

// addressName is a bare name/address pair, used internally to avoid
// depending on net/mail.Address's pointer-receiver shape at call sites.
type addressName struct{ Name, Address string }

func firstAddress(header string) (addressName, bool) {
	list, err := enmime.ParseAddressList(header)
	if err != nil || len(list) == 0 {
		return addressName{}, false
	}
	return addressName{Name: list[0].Name, Address: list[0].Address}, true
}

func collectRecipients(envelope *enmime.Envelope, header string, kind proptag.RecipientType) []RecipientProp {
	list, err := envelope.AddressList(header)
	if err != nil {
		return nil
	}
	var out []RecipientProp
	for _, addr := range list {
		out = append(out, RecipientProp{Name: addr.Name, Address: addr.Address, Type: kind})
	}
	return out
}

// parseImportance maps the free-form Importance/X-Priority header to
// PR_IMPORTANCE's 0/1/2 domain (spec.md §4.4).
func parseImportance(header string) proptag.Importance {
	switch strings.ToLower(strings.TrimSpace(header)) {
	case "high", "1", "1 (highest)", "2 (high)":
		return proptag.ImportanceHigh
	case "low", "5", "5 (lowest)", "4 (low)":
		return proptag.ImportanceLow
	default:
		return proptag.ImportanceNormal
	}
}
