package pstmsg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sensepost/edbxtract/entity"
	"github.com/sensepost/edbxtract/ndb"
)

func TestMakeNID_PacksTypeAndIndex(t *testing.T) {
	nid := MakeNID(NIDTypeNormalFolder, 3)
	require.Equal(t, uint32(NIDTypeNormalFolder), uint32(nid)&0x1F)
}

func TestNameIDMap_AssignsSequentialIDsStartingAt0x8000(t *testing.T) {
	m := NewNameIDMap()
	id1 := m.IDFor(NamedPropertyKey{Name: "X-First"})
	id2 := m.IDFor(NamedPropertyKey{Name: "X-Second"})
	idAgain := m.IDFor(NamedPropertyKey{Name: "X-First"})

	require.Equal(t, uint16(0x8000), id1)
	require.Equal(t, uint16(0x8001), id2)
	require.Equal(t, id1, idAgain)
	require.Len(t, m.Entries(), 2)
}

func TestBuildStorePC_NotEmpty(t *testing.T) {
	mailbox := entity.Mailbox{MailboxNumber: 1, OwnerDisplayName: "Jane Roe"}
	data := BuildStorePC(mailbox, []byte{1, 2, 3, 4}, []byte{5, 6, 7, 8}, []byte{9, 10, 11, 12})
	require.NotEmpty(t, data)
}

func TestBuildMessagePC_IncludesSubjectAndSender(t *testing.T) {
	msg := entity.EmailMessage{
		Subject:      "Hello",
		SenderName:   "Jane Roe",
		SenderEmail:  "jane.roe@example.com",
		MessageClass: "IPM.Note",
		DateSent:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		HasDateSent:  true,
	}
	data := BuildMessagePC(msg)
	require.NotEmpty(t, data)
}

func TestBuildRecipientsTC_OneRowPerRecipient(t *testing.T) {
	msg := entity.EmailMessage{
		To: []entity.NameEmail{{Name: "John Doe", Email: "john.doe@example.com"}},
		Cc: []entity.NameEmail{{Name: "Team", Email: "team@example.com"}},
	}
	data := BuildRecipientsTC(msg)
	require.NotEmpty(t, data)
}

func TestBuildAttachmentsTC_ResolvesFetchData(t *testing.T) {
	msg := entity.EmailMessage{
		Attachments: []entity.Attachment{
			{Filename: "report.pdf", ContentType: "application/pdf", Fetch: func() ([]byte, error) {
				return []byte("%PDF-1.4"), nil
			}},
		},
	}
	counter := uint64(0)
	alloc := func() ndb.BID { counter++; return ndb.NewExternalBID(counter) }

	data, subnodes, blocks, err := BuildAttachmentsTC(msg, alloc)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.Len(t, subnodes, 1)
	require.NotEmpty(t, blocks)
}

func TestWriter_FinalizeProducesHeaderAndData(t *testing.T) {
	w := NewWriter()

	rootID := [26]byte{1}
	inboxID := [26]byte{2}

	folders := []entity.Folder{
		{FolderID: rootID, ParentID: rootID, DisplayName: "Root"},
		{FolderID: inboxID, ParentID: rootID, DisplayName: "Inbox", MessageCount: 1},
	}
	messages := map[[26]byte][]entity.EmailMessage{
		inboxID: {
			{
				Subject:      "Hi",
				SenderName:   "Jane Roe",
				MessageClass: "IPM.Note",
				RecordIndex:  1,
			},
		},
	}

	w.WriteMailbox(entity.Mailbox{MailboxNumber: 1, OwnerDisplayName: "Jane Roe"}, folders, messages)
	out := w.Finalize()

	require.GreaterOrEqual(t, len(out), ndb.HeaderSize)
	require.Equal(t, []byte("!BDN"), out[0:4])
}

func TestWithOrphanedFolder_RoutesUnmatchedMessages(t *testing.T) {
	rootID := [26]byte{1}
	inboxID := [26]byte{2}
	danglingID := [26]byte{9}

	folders := []entity.Folder{
		{FolderID: rootID, ParentID: rootID, DisplayName: "Root"},
		{FolderID: inboxID, ParentID: rootID, DisplayName: "Inbox"},
	}
	messages := map[[26]byte][]entity.EmailMessage{
		inboxID:    {{RecordIndex: 1, Subject: "known"}},
		danglingID: {{RecordIndex: 2, Subject: "orphan"}},
	}

	outFolders, outMessages := withOrphanedFolder(folders, messages)
	require.Len(t, outFolders, 3)

	var orphaned *entity.Folder
	for i := range outFolders {
		if outFolders[i].DisplayName == "Orphaned" {
			orphaned = &outFolders[i]
		}
	}
	require.NotNil(t, orphaned)
	require.Equal(t, rootID, orphaned.ParentID)

	orphanMsgs := outMessages[orphaned.FolderID]
	require.Len(t, orphanMsgs, 1)
	require.Equal(t, "orphan", orphanMsgs[0].Subject)
	require.Nil(t, outMessages[danglingID])
}

func TestWithOrphanedFolder_NoOrphansReturnsInputUnchanged(t *testing.T) {
	rootID := [26]byte{1}
	folders := []entity.Folder{{FolderID: rootID, ParentID: rootID, DisplayName: "Root"}}
	messages := map[[26]byte][]entity.EmailMessage{rootID: {{RecordIndex: 1}}}

	outFolders, outMessages := withOrphanedFolder(folders, messages)
	require.Len(t, outFolders, 1)
	require.Len(t, outMessages, 1)
}

func TestSortFoldersTopological_ChildBeforeParentRowOrderIsCorrected(t *testing.T) {
	rootID := [26]byte{1}
	inboxID := [26]byte{2}
	subID := [26]byte{3}

	// Row order deliberately lists the grandchild, then the child, then the
	// root — the reverse of topological order.
	folders := []entity.Folder{
		{FolderID: subID, ParentID: inboxID, DisplayName: "Projects"},
		{FolderID: inboxID, ParentID: rootID, DisplayName: "Inbox"},
		{FolderID: rootID, ParentID: rootID, DisplayName: "Root"},
	}

	sorted := sortFoldersTopological(folders)
	require.Len(t, sorted, 3)

	pos := make(map[[26]byte]int, len(sorted))
	for i, f := range sorted {
		pos[f.FolderID] = i
	}
	require.Less(t, pos[rootID], pos[inboxID])
	require.Less(t, pos[inboxID], pos[subID])
}
