package entity

import (
	"github.com/sensepost/edbxtract/bytesx"
	"github.com/sensepost/edbxtract/ese"
	"github.com/sensepost/edbxtract/propblob"
)

// Calendar/contact column names. original_source has no calendar/contact
// extraction logic to ground these on directly (the Python tool was
// email-only); these follow the well-known MAPI named-property labels
// Exchange projects onto ESE columns for IPM.Appointment/IPM.Contact rows.
const (
	colApptStart    = "AppointmentStartWhole"
	colApptEnd      = "AppointmentEndWhole"
	colApptLocation = "Location"
	colApptAllDay   = "AppointmentAllDayEvent"
	colDisplayName  = "DisplayName"
	colCompanyName  = "CompanyName"
	colTitle        = "Title"
	colEmail1       = "Email1Address"
	colEmail2       = "Email2Address"
	colBusinessTel  = "BusinessTelephoneNumber"
	colHomeTel      = "HomeTelephoneNumber"
	colMobileTel    = "MobileTelephoneNumber"
)

// AssembleCalendarEvent fills a CalendarEvent from an IPM.Appointment /
// IPM.Schedule.Meeting.* row, reusing the same PropertyBlob sentinel scan
// AssembleEmail uses for sender/subject (the organizer is the blob's sender
// entry) and the body/recipient machinery for attendees.
func AssembleCalendarEvent(row ese.Row, table string, recordIndex int) CalendarEvent {
	g := ese.ColumnGetter{Row: row}
	var ev CalendarEvent

	if blob := g.Raw(colPropertyBlob); blob != nil {
		fields, _ := propblob.Parse(blob, table, recordIndex)
		ev.Subject = fields.Subject
		ev.Organizer = NameEmail{Name: fields.SenderName, Email: fields.SenderEmail}
		ev.UID = fields.MessageID
	}

	if blob := g.Raw(colRecipientList); blob != nil {
		for _, r := range propblob.ParseRecipientList(blob) {
			ev.Attendees = append(ev.Attendees, Attendee{
				NameEmail: NameEmail{Name: r.Name, Email: r.Email},
				Status:    AttendeeNeedsAction,
			})
		}
	}

	ev.Location = decodeStringValue(g.Raw(colApptLocation))
	ev.AllDay = g.Bool(colApptAllDay)

	if data := g.Raw(colApptStart); len(data) == 8 {
		if t, ok := bytesx.FromFileTime(leUint64(data)); ok {
			ev.Start = t
		}
	}
	if data := g.Raw(colApptEnd); len(data) == 8 {
		if t, ok := bytesx.FromFileTime(leUint64(data)); ok {
			ev.End = t
		}
	}

	if large := g.Raw(colLargePropBlob); large != nil {
		ev.Body = DecodeBody(large)
	}

	return ev
}

// AssembleContact fills a Contact from an IPM.Contact row.
func AssembleContact(row ese.Row) Contact {
	g := ese.ColumnGetter{Row: row}
	var c Contact

	c.DisplayName = decodeStringValue(g.Raw(colDisplayName))
	c.Company = decodeStringValue(g.Raw(colCompanyName))
	c.Title = decodeStringValue(g.Raw(colTitle))

	for _, col := range []string{colEmail1, colEmail2} {
		if addr := decodeStringValue(g.Raw(col)); addr != "" {
			c.Emails = append(c.Emails, addr)
		}
	}

	phoneCols := []struct{ kind, col string }{
		{"business", colBusinessTel},
		{"home", colHomeTel},
		{"mobile", colMobileTel},
	}
	for _, pc := range phoneCols {
		if num := decodeStringValue(g.Raw(pc.col)); num != "" {
			c.Phones = append(c.Phones, Phone{Kind: pc.kind, Value: num})
		}
	}

	return c
}
