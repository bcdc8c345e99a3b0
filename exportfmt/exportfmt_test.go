package exportfmt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sensepost/edbxtract/entity"
)

func TestWriteEML_RendersSubjectAndBody(t *testing.T) {
	msg := entity.EmailMessage{
		Subject:     "Quarterly update",
		SenderName:  "Jane Roe",
		SenderEmail: "jane.roe@example.com",
		To:          []entity.NameEmail{{Name: "John Doe", Email: "john.doe@example.com"}},
		BodyText:    "See attached.",
		HasDateSent: true,
		DateSent:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	out, err := RenderEML(msg)
	require.NoError(t, err)
	require.Contains(t, string(out), "Quarterly update")
	require.Contains(t, string(out), "jane.roe@example.com")
}

func TestWriteEML_IncludesAttachment(t *testing.T) {
	msg := entity.EmailMessage{
		Subject: "Report",
		Attachments: []entity.Attachment{
			{Filename: "report.txt", ContentType: "text/plain", Fetch: func() ([]byte, error) {
				return []byte("contents"), nil
			}},
		},
	}

	out, err := RenderEML(msg)
	require.NoError(t, err)
	require.Contains(t, string(out), "report.txt")
}

func TestWriteICS_RendersVEventFields(t *testing.T) {
	ev := entity.CalendarEvent{
		Subject:   "Planning meeting",
		Organizer: entity.NameEmail{Name: "Jane Roe", Email: "jane.roe@example.com"},
		Start:     time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		End:       time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Location:  "Room 1",
		Attendees: []entity.Attendee{
			{NameEmail: entity.NameEmail{Name: "John Doe", Email: "john.doe@example.com"}, Status: entity.AttendeeAccepted},
		},
	}

	out := WriteICS(ev)
	require.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	require.Contains(t, out, "SUMMARY:Planning meeting")
	require.Contains(t, out, "ORGANIZER;CN=Jane Roe:mailto:jane.roe@example.com")
	require.Contains(t, out, "ATTENDEE;CN=John Doe;PARTSTAT=ACCEPTED:mailto:john.doe@example.com")
	require.Contains(t, out, "END:VEVENT\r\n")
}

func TestWriteVCF_RendersNameAndEmails(t *testing.T) {
	c := entity.Contact{
		DisplayName: "Jane Roe",
		Emails:      []string{"jane.roe@example.com"},
		Phones:      []entity.Phone{{Kind: "mobile", Value: "+1-555-0100"}},
		Company:     "Contoso",
	}

	out := WriteVCF(c)
	require.Contains(t, out, "FN:Jane Roe")
	require.Contains(t, out, "N:Roe;Jane;;;")
	require.Contains(t, out, "EMAIL;TYPE=INTERNET:jane.roe@example.com")
	require.Contains(t, out, "TEL;TYPE=CELL:+1-555-0100")
	require.Contains(t, out, "ORG:Contoso")
}

func TestFoldLine_WrapsLongValues(t *testing.T) {
	long := strings.Repeat("a", 200)
	lines := foldLine(long)
	require.Greater(t, len(lines), 1)
	for _, l := range lines {
		require.LessOrEqual(t, len(l), icsFoldWidth)
	}
}
