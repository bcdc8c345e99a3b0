package pstmsg

import (
	"github.com/sensepost/edbxtract/bytesx"
	"github.com/sensepost/edbxtract/entity"
	"github.com/sensepost/edbxtract/ltp"
	"github.com/sensepost/edbxtract/proptag"
)

var pidTagDisplayNameTag = proptag.PidTagDisplayName.Uint32()
var pidTagContentCountTag = proptag.Tag{PropertyType: proptag.PtypInteger32, PropertyID: 0x3602}.Uint32()
var pidTagSubfolderCountTag = proptag.Tag{PropertyType: proptag.PtypInteger32, PropertyID: 0x360A}.Uint32()

// BuildFolderPC assembles a folder's Property Context: display name and
// message/subfolder counts, per spec.md §4.7's "Folders" bullet.
func BuildFolderPC(f entity.Folder, subfolderCount int) []byte {
	pc := ltp.NewPropertyContext()
	pc.Put(ltp.PropertyValue{Tag: pidTagDisplayNameTag, Variable: bytesx.StringToUTF16LE(f.DisplayName)})

	msgCount := make([]byte, 4)
	le32(msgCount, uint32(f.MessageCount))
	pc.Put(ltp.PropertyValue{Tag: pidTagContentCountTag, Inline: msgCount})

	subCount := make([]byte, 4)
	le32(subCount, uint32(subfolderCount))
	pc.Put(ltp.PropertyValue{Tag: pidTagSubfolderCountTag, Inline: subCount})

	return pc.Build()
}

// BuildHierarchyTC assembles a folder's Hierarchy Table: one row per
// immediate subfolder, keyed by the subfolder's NID.
func BuildHierarchyTC(children []entity.Folder, nidOf func(folderID [26]byte) NID) []byte {
	columns := []ltp.ColumnDescriptor{
		{Tag: pidTagDisplayNameTag, Type: ltp.ColHID},
		{Tag: pidTagContentCountTag, Type: ltp.ColInteger32},
	}
	tc := ltp.NewTableContext(columns)
	for _, child := range children {
		nid := nidOf(child.FolderID)
		msgCount := make([]byte, 4)
		le32(msgCount, uint32(child.MessageCount))
		tc.AddRow(ltp.Row{RowID: uint32(nid), Cells: map[uint32][]byte{
			pidTagDisplayNameTag:  []byte(child.DisplayName),
			pidTagContentCountTag: msgCount,
		}})
	}
	return tc.Build()
}

// BuildContentsTC assembles a folder's Contents Table: one row per message
// it directly holds, with the columns a mail client needs to list messages
// without opening each one.
func BuildContentsTC(messages []entity.EmailMessage, nidOf func(recordIndex int) NID) []byte {
	subjectTag := proptag.PidTagSubject.Uint32()
	senderTag := proptag.PidTagSenderName.Uint32()
	deliveryTag := proptag.PidTagMessageDeliveryTime.Uint32()
	hasAttachTag := proptag.PidTagHasAttachments.Uint32()

	columns := []ltp.ColumnDescriptor{
		{Tag: subjectTag, Type: ltp.ColHID},
		{Tag: senderTag, Type: ltp.ColHID},
		{Tag: deliveryTag, Type: ltp.ColTime},
		{Tag: hasAttachTag, Type: ltp.ColBoolean},
	}
	tc := ltp.NewTableContext(columns)
	for _, m := range messages {
		nid := nidOf(m.RecordIndex)
		deliveryBytes := make([]byte, 8)
		if m.HasDateRecvd {
			ft := bytesx.ToFileTime(m.DateReceived)
			le64(deliveryBytes, ft)
		}
		hasAttach := byte(0)
		if len(m.Attachments) > 0 {
			hasAttach = 1
		}
		tc.AddRow(ltp.Row{RowID: uint32(nid), Cells: map[uint32][]byte{
			subjectTag:   []byte(m.Subject),
			senderTag:    []byte(m.SenderName),
			deliveryTag:  deliveryBytes,
			hasAttachTag: {hasAttach},
		}})
	}
	return tc.Build()
}
