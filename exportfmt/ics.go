package exportfmt

import (
	"fmt"
	"strings"
	"time"

	"github.com/sensepost/edbxtract/entity"
)

const icsDateTimeLayout = "20060102T150405Z"
const icsDateLayout = "20060102"
const icsFoldWidth = 75

// WriteICS renders one calendar event as a complete VCALENDAR/VEVENT
// document, per spec.md §4.8's "iCalendar" bullet and [RFC 5545]'s
// content-line folding rule (lines wrapped at 75 octets, continuation
// lines prefixed with a single space).
func WriteICS(ev entity.CalendarEvent) string {
	var b strings.Builder
	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:-//edbxtract//PST Synthesis//EN")
	writeLine(&b, "BEGIN:VEVENT")
	writeLine(&b, "UID:"+icsEscape(eventUID(ev)))
	writeLine(&b, "DTSTAMP:"+time.Now().UTC().Format(icsDateTimeLayout))

	if ev.AllDay {
		writeLine(&b, "DTSTART;VALUE=DATE:"+ev.Start.Format(icsDateLayout))
		writeLine(&b, "DTEND;VALUE=DATE:"+ev.End.Format(icsDateLayout))
	} else {
		writeLine(&b, "DTSTART:"+ev.Start.UTC().Format(icsDateTimeLayout))
		writeLine(&b, "DTEND:"+ev.End.UTC().Format(icsDateTimeLayout))
	}

	writeLine(&b, "SUMMARY:"+icsEscape(ev.Subject))
	if ev.Location != "" {
		writeLine(&b, "LOCATION:"+icsEscape(ev.Location))
	}
	if ev.Body != "" {
		writeLine(&b, "DESCRIPTION:"+icsEscape(ev.Body))
	}
	if ev.Organizer.Email != "" {
		writeLine(&b, fmt.Sprintf("ORGANIZER;CN=%s:mailto:%s", icsEscape(ev.Organizer.Name), ev.Organizer.Email))
	}
	for _, att := range ev.Attendees {
		if att.Email == "" {
			continue
		}
		writeLine(&b, fmt.Sprintf("ATTENDEE;CN=%s;PARTSTAT=%s:mailto:%s",
			icsEscape(att.Name), icsPartStat(att.Status), att.Email))
	}

	writeLine(&b, "END:VEVENT")
	writeLine(&b, "END:VCALENDAR")
	return b.String()
}

func eventUID(ev entity.CalendarEvent) string {
	if ev.UID != "" {
		return ev.UID
	}
	return fmt.Sprintf("%d@edbxtract", ev.Start.UnixNano())
}

func icsPartStat(status entity.AttendeeStatus) string {
	switch status {
	case entity.AttendeeAccepted:
		return "ACCEPTED"
	case entity.AttendeeDeclined:
		return "DECLINED"
	case entity.AttendeeTentative:
		return "TENTATIVE"
	default:
		return "NEEDS-ACTION"
	}
}

// icsEscape applies [RFC 5545] §3.3.11's TEXT escaping: backslash, comma,
// semicolon, and newline are backslash-escaped.
func icsEscape(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`;`, `\;`,
		`,`, `\,`,
		"\n", `\n`,
		"\r", "",
	)
	return r.Replace(s)
}

// writeLine appends value as one or more folded content lines terminated
// by CRLF.
func writeLine(b *strings.Builder, value string) {
	for i, line := range foldLine(value) {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(line)
		b.WriteString("\r\n")
	}
}

func foldLine(s string) []string {
	if len(s) <= icsFoldWidth {
		return []string{s}
	}
	// Continuation lines get a leading space from writeLine, so they carry
	// one octet less of content to stay within icsFoldWidth.
	var lines []string
	width := icsFoldWidth
	for len(s) > width {
		lines = append(lines, s[:width])
		s = s[width:]
		width = icsFoldWidth - 1
	}
	lines = append(lines, s)
	return lines
}
