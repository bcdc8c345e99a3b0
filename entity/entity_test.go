package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	require.Equal(t, VariantEmail, Classify("IPM.Note"))
	require.Equal(t, VariantEmail, Classify("IPM.Task"))
	require.Equal(t, VariantEmail, Classify("IPM.Activity"))
	require.Equal(t, VariantEmail, Classify("IPM.Unknown.Foo"))
	require.Equal(t, VariantCalendarEvent, Classify("IPM.Appointment"))
	require.Equal(t, VariantCalendarEvent, Classify("IPM.Schedule.Meeting.Request"))
	require.Equal(t, VariantContact, Classify("IPM.Contact"))
}

func TestFolder_IsRoot(t *testing.T) {
	f := Folder{}
	require.True(t, f.IsRoot())

	f.ParentID[0] = 1
	require.False(t, f.IsRoot())
}

func TestAttachment_FetchDataNilCallback(t *testing.T) {
	a := Attachment{Filename: "x.txt"}
	data, err := a.FetchData()
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestDecodeBody_UTF8Passthrough(t *testing.T) {
	got := DecodeBody([]byte("hello world"))
	require.Equal(t, "hello world", got)
}

func TestHTMLToText_StripsTagsAndBreaksLines(t *testing.T) {
	html := "<html><body><p>Hello</p><p>World<br>Again</p></body></html>"
	got := HTMLToText(html)
	require.Contains(t, got, "Hello")
	require.Contains(t, got, "World")
	require.Contains(t, got, "Again")
}

func TestHTMLToText_SkipsScriptContent(t *testing.T) {
	html := "<p>Visible</p><script>alert('x')</script>"
	got := HTMLToText(html)
	require.Contains(t, got, "Visible")
	require.NotContains(t, got, "alert")
}

// fakeRow is a minimal ese.Row used to test assemblers without a real ESE
// backend, consistent with C3's narrow capability interface.
type fakeRow struct {
	columns map[string][]byte
}

func (r fakeRow) ColumnBytes(column string) ([]byte, bool) {
	v, ok := r.columns[column]
	return v, ok
}

func (r fakeRow) IsLongValue(column string) bool { return false }

func (r fakeRow) ResolveLongValue(lvID uint32) ([]byte, error) { return nil, nil }

func TestAssembleFolder_RootWhenNoParent(t *testing.T) {
	row := fakeRow{columns: map[string][]byte{
		colFolderID:      make([]byte, 26),
		colFolderDisplay: []byte("Inbox\x00"),
	}}
	f := AssembleFolder(row)
	require.True(t, f.IsRoot())
}

func TestAssembleContact_CollectsEmailsAndPhones(t *testing.T) {
	row := fakeRow{columns: map[string][]byte{
		colDisplayName: []byte("Jane Roe\x00"),
		colEmail1:      []byte("jane@example.com\x00"),
		colMobileTel:   []byte("555-1234\x00"),
	}}
	c := AssembleContact(row)
	require.Equal(t, "Jane Roe", c.DisplayName)
	require.Equal(t, []string{"jane@example.com"}, c.Emails)
	require.Len(t, c.Phones, 1)
	require.Equal(t, "mobile", c.Phones[0].Kind)
}
