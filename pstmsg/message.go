package pstmsg

import (
	"github.com/sensepost/edbxtract/bytesx"
	"github.com/sensepost/edbxtract/entity"
	"github.com/sensepost/edbxtract/ltp"
	"github.com/sensepost/edbxtract/ndb"
	"github.com/sensepost/edbxtract/proptag"
)

// subnode NIDs reserved within every message's subnode tree, fixed values
// per [MS-PST] §2.4.5.1.
const (
	subnodeRecipientTable  uint32 = 0x692
	subnodeAttachmentTable uint32 = 0x671
)

// BuildMessagePC assembles a message's Property Context with the fields a
// mail client needs to render it, per spec.md §4.4/§4.7.
func BuildMessagePC(m entity.EmailMessage) []byte {
	pc := ltp.NewPropertyContext()

	pc.Put(ltp.PropertyValue{Tag: proptag.PidTagMessageClass.Uint32(), Variable: bytesx.StringToUTF16LE(m.MessageClass)})
	pc.Put(ltp.PropertyValue{Tag: proptag.PidTagSubject.Uint32(), Variable: bytesx.StringToUTF16LE(m.Subject)})
	pc.Put(ltp.PropertyValue{Tag: proptag.PidTagSenderName.Uint32(), Variable: bytesx.StringToUTF16LE(m.SenderName)})
	pc.Put(ltp.PropertyValue{Tag: proptag.PidTagSenderEmailAddress.Uint32(), Variable: bytesx.StringToUTF16LE(m.SenderEmail)})
	pc.Put(ltp.PropertyValue{Tag: proptag.PidTagSenderAddrType.Uint32(), Variable: bytesx.StringToUTF16LE("SMTP")})
	pc.Put(ltp.PropertyValue{Tag: proptag.PidTagInternetMessageID.Uint32(), Variable: bytesx.StringToUTF16LE(m.MessageID)})

	if m.HasDateSent {
		b := make([]byte, 8)
		le64(b, bytesx.ToFileTime(m.DateSent))
		pc.Put(ltp.PropertyValue{Tag: proptag.PidTagClientSubmitTime.Uint32(), Inline: b})
	}
	if m.HasDateRecvd {
		b := make([]byte, 8)
		le64(b, bytesx.ToFileTime(m.DateReceived))
		pc.Put(ltp.PropertyValue{Tag: proptag.PidTagMessageDeliveryTime.Uint32(), Variable: b})
	}

	importance := make([]byte, 4)
	le32(importance, uint32(m.Importance))
	pc.Put(ltp.PropertyValue{Tag: proptag.PidTagImportance.Uint32(), Inline: importance})

	hasAttach := byte(0)
	if len(m.Attachments) > 0 {
		hasAttach = 1
	}
	pc.Put(ltp.PropertyValue{Tag: proptag.PidTagHasAttachments.Uint32(), Inline: []byte{hasAttach}})

	if m.BodyText != "" {
		pc.Put(ltp.PropertyValue{Tag: proptag.PidTagBody.Uint32(), Variable: bytesx.StringToUTF16LE(m.BodyText)})
	}
	if m.BodyHTML != "" {
		pc.Put(ltp.PropertyValue{Tag: proptag.PidTagHTML.Uint32(), Variable: []byte(m.BodyHTML)})
	}

	return pc.Build()
}

// BuildRecipientsTC assembles a message's Recipients Table: one row per
// To/Cc/Bcc recipient with its display name, address, and recipient type.
func BuildRecipientsTC(m entity.EmailMessage) []byte {
	nameTag := proptag.PidTagDisplayName.Uint32()
	emailTag := proptag.PidTagSenderEmailAddress.Uint32() // reused as the recipient's own address column
	typeTag := proptag.PidTagRecipientType.Uint32()

	columns := []ltp.ColumnDescriptor{
		{Tag: nameTag, Type: ltp.ColHID},
		{Tag: emailTag, Type: ltp.ColHID},
		{Tag: typeTag, Type: ltp.ColInteger32},
	}
	tc := ltp.NewTableContext(columns)

	rowID := uint32(1)
	add := func(list []entity.NameEmail, kind proptag.RecipientType) {
		for _, r := range list {
			typeBytes := make([]byte, 4)
			le32(typeBytes, uint32(kind))
			tc.AddRow(ltp.Row{RowID: rowID, Cells: map[uint32][]byte{
				nameTag:  []byte(r.Name),
				emailTag: []byte(r.Email),
				typeTag:  typeBytes,
			}})
			rowID++
		}
	}
	add(m.To, proptag.RecipientTo)
	add(m.Cc, proptag.RecipientCc)
	add(m.Bcc, proptag.RecipientBcc)

	return tc.Build()
}

// BuildAttachmentsTC assembles a message's Attachment Table plus, for each
// attachment, the subnode entries to fold into the message's subnode tree:
// one PC per attachment carrying its filename, MIME type, and data (via the
// ndb layer's block/XBLOCK splitting for large payloads).
func BuildAttachmentsTC(m entity.EmailMessage, allocBID func() ndb.BID) ([]byte, []ndb.SubnodeEntry, []ndb.Block, error) {
	filenameTag := proptag.PidTagAttachFilename.Uint32()
	mimeTag := proptag.PidTagAttachMimeTag.Uint32()

	columns := []ltp.ColumnDescriptor{
		{Tag: filenameTag, Type: ltp.ColHID},
		{Tag: mimeTag, Type: ltp.ColHID},
	}
	tc := ltp.NewTableContext(columns)

	var subnodes []ndb.SubnodeEntry
	var blocks []ndb.Block

	for i, att := range m.Attachments {
		nid := uint32(MakeNID(NIDTypeAttachment, uint32(i+1)))

		data, err := att.FetchData()
		if err != nil {
			return nil, nil, nil, err
		}

		attPC := ltp.NewPropertyContext()
		attPC.Put(ltp.PropertyValue{Tag: proptag.PidTagAttachFilename.Uint32(), Variable: bytesx.StringToUTF16LE(att.Filename)})
		attPC.Put(ltp.PropertyValue{Tag: proptag.PidTagAttachMimeTag.Uint32(), Variable: bytesx.StringToUTF16LE(att.ContentType)})
		method := make([]byte, 4)
		le32(method, proptag.AttachMethodByValue)
		attPC.Put(ltp.PropertyValue{Tag: proptag.PidTagAttachMethod.Uint32(), Inline: method})
		if len(data) > 0 {
			attPC.Put(ltp.PropertyValue{Tag: proptag.PidTagAttachDataBin.Uint32(), Variable: data})
		}
		pcBytes := attPC.Build()

		bid, dataBlocks := ndb.SplitData(pcBytes, allocBID)
		blocks = append(blocks, dataBlocks...)
		subnodes = append(subnodes, ndb.SubnodeEntry{NID: nid, BIDData: bid})

		tc.AddRow(ltp.Row{RowID: nid, Cells: map[uint32][]byte{
			filenameTag: []byte(att.Filename),
			mimeTag:     []byte(att.ContentType),
		}})
	}

	return tc.Build(), subnodes, blocks, nil
}
