package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sensepost/edbxtract/entity"
)

func sampleMessage(idx int, subject string, sent time.Time) entity.EmailMessage {
	return entity.EmailMessage{
		RecordIndex: idx,
		Subject:     subject,
		SenderName:  "Alice",
		SenderEmail: "alice@example.com",
		DateSent:    sent,
		HasDateSent: true,
	}
}

func TestFilterMessages_BySubjectSubstring(t *testing.T) {
	messages := []entity.EmailMessage{
		sampleMessage(1, "Quarterly Report", time.Now()),
		sampleMessage(2, "Lunch plans", time.Now()),
	}
	out := filterMessages(messages, "report", "", "")
	require.Len(t, out, 1)
	require.Equal(t, 1, out[0].RecordIndex)
}

func TestFilterMessages_ByDateRange(t *testing.T) {
	early := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	messages := []entity.EmailMessage{
		sampleMessage(1, "old", early),
		sampleMessage(2, "new", late),
	}
	out := filterMessages(messages, "", "2022-01-01", "")
	require.Len(t, out, 1)
	require.Equal(t, 2, out[0].RecordIndex)
}

func TestFilterMessages_NoFiltersReturnsAll(t *testing.T) {
	messages := []entity.EmailMessage{
		sampleMessage(1, "a", time.Now()),
		sampleMessage(2, "b", time.Now()),
	}
	out := filterMessages(messages, "", "", "")
	require.Len(t, out, 2)
}

func TestMustHexDecode(t *testing.T) {
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, mustHexDecode("deadbeef"))
	require.Equal(t, []byte{}, mustHexDecode(""))
}

func TestWriteCSV_IncludesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	sent := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	messages := []entity.EmailMessage{sampleMessage(7, "Hello, world", sent)}

	require.NoError(t, writeCSV(path, messages))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "record_index,sender_name,sender_email,subject,date_sent")
	require.Contains(t, string(data), "\"Hello, world\"")
	require.Contains(t, string(data), "alice@example.com")
}

func TestExportMessages_EML_WritesOneFilePerMessage(t *testing.T) {
	dir := t.TempDir()
	folderID := [26]byte{1}
	byFolder := map[[26]byte][]entity.EmailMessage{
		folderID: {sampleMessage(1, "Hi", time.Now()), sampleMessage(2, "Bye", time.Now())},
	}

	require.NoError(t, exportMessages("eml", dir, entity.Mailbox{}, nil, byFolder))

	require.FileExists(t, filepath.Join(dir, "1.eml"))
	require.FileExists(t, filepath.Join(dir, "2.eml"))
}

func TestExportMessages_PST_WritesSingleFile(t *testing.T) {
	dir := t.TempDir()
	rootID := [26]byte{1}
	folders := []entity.Folder{{FolderID: rootID, ParentID: rootID, DisplayName: "Top of Information Store"}}
	byFolder := map[[26]byte][]entity.EmailMessage{
		rootID: {sampleMessage(1, "Hi", time.Now())},
	}

	require.NoError(t, exportMessages("pst", dir, entity.Mailbox{MailboxNumber: 1}, folders, byFolder))

	path := filepath.Join(dir, "export.pst")
	require.FileExists(t, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, len(data) > 0)
	require.Equal(t, "!BDN", string(data[0:4]))
}
