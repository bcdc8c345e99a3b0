package entity

import (
	"github.com/sensepost/edbxtract/bytesx"
	"github.com/sensepost/edbxtract/ese"
	"github.com/sensepost/edbxtract/lzx"
	"github.com/sensepost/edbxtract/propblob"
)

// Message column names, grounded on original_source/analyze_mailbox.py's
// get_column_map usage (FolderId, IsHidden, IsRead, HasAttachments,
// MessageClass, DateReceived, DateSent, Size, PropertyBlob).
const (
	colFolderID       = "FolderId"
	colIsHidden       = "IsHidden"
	colIsRead         = "IsRead"
	colHasAttachments = "HasAttachments"
	colMessageClass   = "MessageClass"
	colDateReceived   = "DateReceived"
	colDateSent       = "DateSent"
	colImportance     = "Importance"
	colPropertyBlob   = "PropertyBlob"
	colRecipientList  = "RecipientList"
	colDisplayTo      = "DisplayTo"
	colDisplayCc      = "DisplayCc"
	colDisplayBcc     = "DisplayBcc"
	colNativeBody     = "NativeBody"
	colLargePropBlob  = "LargePropertyValueBlob"
	colSubobjectsBlob = "SubobjectsBlob"
	colInid           = "Inid"
	colAttachFilename = "AttachFilename"
	colAttachMimeTag  = "AttachMimeTag"
	colAttachDataBin  = "AttachDataBin"
)

// AttachmentResolver fetches an Attachment_XXX row's data by Inid, and is
// supplied by the caller since it depends on table lookup that lives above
// this package (the Database/Table cache).
type AttachmentResolver func(inid uint32) (Attachment, bool)

// AssembleEmail fills an EmailMessage from a Message_XXX row in the fixed
// order spec.md §4.3 names: message_class -> sender fields from
// PropertyBlob -> subject -> DisplayTo+RecipientList -> date fields ->
// bit-flag columns -> body -> attachments. table/recordIndex identify the
// row for diagnostics.
func AssembleEmail(row ese.Row, table string, recordIndex int, resolveAttachment AttachmentResolver) (EmailMessage, error) {
	g := ese.ColumnGetter{Row: row}
	var msg EmailMessage
	msg.RecordIndex = recordIndex

	msg.MessageClass = decodeStringValue(g.Raw(colMessageClass))
	if fid := g.Raw(colFolderID); len(fid) == 26 {
		copy(msg.FolderID[:], fid)
	}

	if blob := g.Raw(colPropertyBlob); blob != nil {
		fields, _ := propblob.Parse(blob, table, recordIndex)
		msg.SenderName = fields.SenderName
		msg.SenderEmail = fields.SenderEmail
		msg.Subject = fields.Subject
		msg.MessageID = fields.MessageID
	}

	recipients := resolveRecipients(g)
	msg.To = recipients[colDisplayTo]
	msg.Cc = recipients[colDisplayCc]
	msg.Bcc = recipients[colDisplayBcc]

	if data := g.Raw(colDateSent); len(data) == 8 {
		if t, ok := bytesx.FromFileTime(leUint64(data)); ok {
			msg.DateSent, msg.HasDateSent = t, true
		}
	}
	if data := g.Raw(colDateReceived); len(data) == 8 {
		if t, ok := bytesx.FromFileTime(leUint64(data)); ok {
			msg.DateReceived, msg.HasDateRecvd = t, true
		}
	}

	msg.IsRead = g.Bool(colIsRead)
	msg.IsHidden = g.Bool(colIsHidden)
	if v, ok := g.Int(colImportance); ok {
		msg.Importance = Importance(v)
	}

	if native := g.Raw(colNativeBody); len(native) > 7 {
		// Exchange's NativeBody header: marker(1) + u16 size(2) + 4 reserved.
		if decoded, err := lzx.Decompress(append([]byte{native[0], native[1], native[2]}, native[7:]...)); err == nil {
			msg.BodyText = DecodeBody(decoded)
		}
	}
	if large := g.Raw(colLargePropBlob); large != nil {
		msg.BodyHTML = SanitizeHTML(DecodeBody(large))
		if msg.BodyText == "" {
			msg.BodyText = HTMLToText(msg.BodyHTML)
		}
	}

	msg.Attachments = resolveAttachments(g.Raw(colSubobjectsBlob), resolveAttachment)
	return msg, nil
}

// decodeStringValue tries UTF-16LE then UTF-8, trimming trailing NULs,
// mirroring exchange_parser.py's _get_string_value fallback order. Unlike
// the Python original (which tries utf-16-le unconditionally first, and
// Python's codec happily decodes almost any even-length byte string as
// UTF-16LE), this only takes the UTF-16LE branch when the byte shape
// actually looks like narrow-range UTF-16LE text (every other byte zero) —
// otherwise that branch would misdecode plain ASCII/UTF-8 of even length.
func decodeStringValue(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if len(raw)%2 == 0 && looksUTF16LE(raw) {
		return trimTrailingNUL(bytesx.UTF16LEToString(raw))
	}
	if s, ok := bytesx.DecodeUTF8OrReplace(raw); ok {
		return trimTrailingNUL(s)
	}
	return trimTrailingNUL(bytesx.DecodeLegacyBody(raw, bytesx.CodepageWindows1252))
}

// looksUTF16LE reports whether most odd-indexed bytes are zero, the
// signature of ASCII/Latin-range text encoded as UTF-16LE.
func looksUTF16LE(raw []byte) bool {
	if len(raw) < 4 {
		return false
	}
	zero, odd := 0, 0
	for i := 1; i < len(raw); i += 2 {
		odd++
		if raw[i] == 0 {
			zero++
		}
	}
	return odd > 0 && float64(zero)/float64(odd) > 0.8
}

func trimTrailingNUL(s string) string {
	for len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	return s
}

// AttachmentFromRow builds an Attachment from an Attachment_XXX row, with a
// lazy Fetch that re-resolves PR_ATTACH_DATA_BIN (possibly long-value-backed)
// only when the caller actually reads the data.
func AttachmentFromRow(row ese.Row) Attachment {
	g := ese.ColumnGetter{Row: row}
	att := Attachment{
		Filename:    decodeStringValue(g.Raw(colAttachFilename)),
		ContentType: decodeStringValue(g.Raw(colAttachMimeTag)),
	}
	att.Fetch = func() ([]byte, error) {
		data, err := ese.ResolveValue(row, colAttachDataBin)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	if data, present := row.ColumnBytes(colAttachDataBin); present {
		att.Size = len(data)
	}
	return att
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func resolveRecipients(g ese.ColumnGetter) map[string][]NameEmail {
	out := map[string][]NameEmail{}

	recipientMap := map[string]string{}
	if blob := g.Raw(colRecipientList); blob != nil {
		for _, r := range propblob.ParseRecipientList(blob) {
			recipientMap[r.Name] = r.Email
		}
	}

	for _, col := range []string{colDisplayTo, colDisplayCc, colDisplayBcc} {
		raw := g.Raw(col)
		if raw == nil {
			continue
		}
		display := bytesx.UTF16LEToString(raw)
		joined := propblob.JoinDisplayTo(display, toRecipientSlice(recipientMap))
		var list []NameEmail
		for _, r := range joined {
			list = append(list, NameEmail{Name: r.Name, Email: r.Email})
		}
		out[col] = list
	}
	return out
}

func toRecipientSlice(m map[string]string) []propblob.Recipient {
	out := make([]propblob.Recipient, 0, len(m))
	for name, email := range m {
		out = append(out, propblob.Recipient{Name: name, Email: email})
	}
	return out
}

// resolveAttachments scans a SubobjectsBlob for 0x21-prefixed Inid markers
// (4-byte little-endian node IDs) and joins each against Attachment_XXX via
// the caller-supplied resolver, producing lazily-fetchable Attachments.
func resolveAttachments(blob []byte, resolve AttachmentResolver) []Attachment {
	if blob == nil || resolve == nil {
		return nil
	}
	var out []Attachment
	for i := 0; i+5 <= len(blob); i++ {
		if blob[i] != 0x21 {
			continue
		}
		inid := uint32(blob[i+1]) | uint32(blob[i+2])<<8 | uint32(blob[i+3])<<16 | uint32(blob[i+4])<<24
		if att, ok := resolve(inid); ok {
			out = append(out, att)
		}
		i += 4
	}
	return out
}
