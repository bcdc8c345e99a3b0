package propblob

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_S2SenderNameAndSubject(t *testing.T) {
	// spec.md scenario S2: PropertyBlob containing "JOHN DOEM<len>Hi all",
	// the name running directly into the M sentinel with no separating NUL.
	// The VLQ length byte is the payload's actual byte count (6, for "Hi
	// all"); the DN-path "-" delimiter supplies the sender_name prefix per
	// spec.md §4.2's contract.
	blob := []byte("/o=Exchange/cn=Recipients/cn=GUID-JOHN DOEM\x06Hi all")

	f, derr := Parse(blob, "Message_1", 0)
	require.Nil(t, derr)
	require.Equal(t, "John Doe", f.SenderName)
	require.Equal(t, "Hi all", f.Subject)
}

func TestParse_S3UTF16Subject(t *testing.T) {
	// spec.md scenario S3: Cyrillic display name, UTF-16LE subject "Прив".
	// The DN-derived name is null-terminated (distinct from the sentinel
	// occurrence, which directly concatenates name+marker with no separator).
	senderTail := "МАША ИВАНОВА"
	utf16Subject := []byte{0x1F, 0x04, 0x40, 0x04, 0x38, 0x04, 0x32, 0x04} // "Прив" UTF-16LE
	blob := []byte("-" + senderTail + "\x00" + senderTail + "I\x04")
	blob = append(blob, utf16Subject...)

	f, derr := Parse(blob, "Message_1", 0)
	require.Nil(t, derr)
	require.Equal(t, "Прив", f.Subject)
}

func TestParse_EmptyBlobNoFailure(t *testing.T) {
	f, derr := Parse(nil, "Message_1", 0)
	require.Nil(t, derr)
	require.Equal(t, Fields{}, f)
}

func TestParse_SenderEmailAndMessageID(t *testing.T) {
	blob := []byte("-JANE ROE" + "M\x08jane roe" +
		"jane.roe@example.com garbage <abc123@example.com> trailer")

	f, _ := Parse(blob, "Message_1", 0)
	require.Equal(t, "jane.roe@example.com", f.SenderEmail)
	require.Equal(t, "<abc123@example.com>", f.MessageID)
}

func TestParse_TruncatedNameFallsBackToShorterPrefix(t *testing.T) {
	// Full name "JOHN Q PUBLIC" has no subject sentinel, but the prefix
	// "JOHN Q" does — the parser should fall back to the longest matching
	// prefix.
	blob := []byte("-JOHN Q PUBLIC\x00" + "JOHN QM\x07Subject")

	f, derr := Parse(blob, "Message_1", 0)
	require.Nil(t, derr)
	require.Equal(t, "Subject", f.Subject)
}

func TestParseRecipientList_Basic(t *testing.T) {
	blob := []byte("ProP" + "-ALICE SMITH" + "EXM" + "alice.smith@example.com" +
		"ProP" + "-BOB JONES" + "EXM" + "bob.jones@example.com")

	recipients := ParseRecipientList(blob)
	require.Len(t, recipients, 2)
	require.Equal(t, "alice.smith@example.com", recipients[0].Email)
	require.Equal(t, "bob.jones@example.com", recipients[1].Email)
}

func TestJoinDisplayTo_MatchesAndUnmatched(t *testing.T) {
	recipients := []Recipient{
		{Name: "ALICE SMITH", Email: "alice@example.com"},
	}
	joined := JoinDisplayTo("Alice Smith; Unknown Person", recipients)
	require.Len(t, joined, 2)
	require.Equal(t, "alice@example.com", joined[0].Email)
	require.Equal(t, "", joined[1].Email)
}

func TestReadVLQ_MultiByteLength(t *testing.T) {
	// 300 encoded as VLQ: 0xAC, 0x02 -> (0x2C | 0x80) then 0x02.
	blob := []byte{0xAC, 0x02, 'x'}
	value, next, ok := readVLQ(blob, 0)
	require.True(t, ok)
	require.Equal(t, 300, value)
	require.Equal(t, 2, next)
}
