// Package exportfmt renders extracted entities into the file formats a
// mail client or calendar application can open directly: RFC 2822 EML,
// iCalendar ICS, and vCard VCF, per spec.md §4.8. EML emission follows
// dhcgn-mbox-to-imap's use of emersion/go-message/mail for MIME
// construction; ICS/VCF are hand-built since no example repo carries a
// calendar/vCard library, following the same line-folding and field-escape
// rules [RFC 5545]/[RFC 2426] specify.
package exportfmt

import (
	"bytes"
	"io"

	"github.com/emersion/go-message/mail"

	"github.com/sensepost/edbxtract/entity"
)

// WriteEML renders msg as an RFC 2822 message into w: a multipart/mixed
// envelope around a multipart/alternative part holding whichever of the
// text and HTML bodies are non-empty, followed by each attachment as a
// separate MIME part.
func WriteEML(w io.Writer, msg entity.EmailMessage) error {
	var h mail.Header
	h.SetSubject(msg.Subject)
	if msg.SenderEmail != "" {
		h.SetAddressList("From", []*mail.Address{{Name: msg.SenderName, Address: msg.SenderEmail}})
	}
	if len(msg.To) > 0 {
		h.SetAddressList("To", toMailAddresses(msg.To))
	}
	if len(msg.Cc) > 0 {
		h.SetAddressList("Cc", toMailAddresses(msg.Cc))
	}
	if msg.HasDateSent {
		h.SetDate(msg.DateSent)
	} else if msg.HasDateRecvd {
		h.SetDate(msg.DateReceived)
	}
	if msg.MessageID != "" {
		h.SetMessageID(msg.MessageID)
	}

	mw, err := mail.CreateWriter(w, h)
	if err != nil {
		return err
	}
	defer mw.Close()

	if err := writeBody(mw, msg); err != nil {
		return err
	}

	for _, att := range msg.Attachments {
		if err := writeAttachment(mw, att); err != nil {
			return err
		}
	}
	return nil
}

func writeBody(mw *mail.Writer, msg entity.EmailMessage) error {
	iw, err := mw.CreateInline()
	if err != nil {
		return err
	}
	defer iw.Close()

	if msg.BodyText != "" {
		var ih mail.InlineHeader
		ih.Set("Content-Type", "text/plain; charset=utf-8")
		pw, err := iw.CreatePart(ih)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(pw, msg.BodyText); err != nil {
			pw.Close()
			return err
		}
		pw.Close()
	}

	if msg.BodyHTML != "" {
		var ih mail.InlineHeader
		ih.Set("Content-Type", "text/html; charset=utf-8")
		pw, err := iw.CreatePart(ih)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(pw, msg.BodyHTML); err != nil {
			pw.Close()
			return err
		}
		pw.Close()
	}
	return nil
}

func writeAttachment(mw *mail.Writer, att entity.Attachment) error {
	data, err := att.FetchData()
	if err != nil {
		return err
	}

	var ah mail.AttachmentHeader
	contentType := att.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ah.Set("Content-Type", contentType)
	ah.SetFilename(att.Filename)

	aw, err := mw.CreateAttachment(ah)
	if err != nil {
		return err
	}
	defer aw.Close()

	_, err = aw.Write(data)
	return err
}

func toMailAddresses(list []entity.NameEmail) []*mail.Address {
	out := make([]*mail.Address, len(list))
	for i, r := range list {
		out[i] = &mail.Address{Name: r.Name, Address: r.Email}
	}
	return out
}

// RenderEML is a convenience wrapper returning the rendered message as a
// byte slice, used by callers that need the bytes in memory (e.g. writing
// into a zip archive) rather than streaming to a file.
func RenderEML(msg entity.EmailMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteEML(&buf, msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
