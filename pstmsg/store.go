package pstmsg

import (
	"github.com/google/uuid"

	"github.com/sensepost/edbxtract/bytesx"
	"github.com/sensepost/edbxtract/entity"
	"github.com/sensepost/edbxtract/ltp"
	"github.com/sensepost/edbxtract/proptag"
)

// BuildStorePC assembles the Store object's Property Context: display
// name, record key, and the entry IDs the Messaging layer's well-known
// folders use to announce themselves, per spec.md §4.7's "Store object"
// bullet.
func BuildStorePC(mailbox entity.Mailbox, rootFolderEntryID, wastebasketEntryID, finderEntryID []byte) []byte {
	pc := ltp.NewPropertyContext()

	pc.Put(ltp.PropertyValue{Tag: proptag.PidTagDisplayName.Uint32(), Variable: bytesx.StringToUTF16LE(mailbox.OwnerDisplayName)})

	recordKey := uuid.New()
	pc.Put(ltp.PropertyValue{Tag: proptag.PidTagRecordKey.Uint32(), Variable: recordKey[:]})

	rootNum := make([]byte, 4)
	le32(rootNum, uint32(mailbox.MailboxNumber))
	pc.Put(ltp.PropertyValue{Tag: proptag.PidTagRootMailbox.Uint32(), Inline: rootNum})

	pc.Put(ltp.PropertyValue{Tag: proptag.PidTagIPMSubtreeEntryID.Uint32(), Variable: rootFolderEntryID})
	pc.Put(ltp.PropertyValue{Tag: proptag.PidTagIPMWastebasketEID.Uint32(), Variable: wastebasketEntryID})
	pc.Put(ltp.PropertyValue{Tag: proptag.PidTagFinderEntryID.Uint32(), Variable: finderEntryID})

	return pc.Build()
}

func le32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func le64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
}
