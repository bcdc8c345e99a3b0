package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/sensepost/edbxtract/config"
	"github.com/sensepost/edbxtract/diag"
	"github.com/sensepost/edbxtract/entity"
	"github.com/sensepost/edbxtract/ese"
	"github.com/sensepost/edbxtract/exportfmt"
	"github.com/sensepost/edbxtract/pstmsg"
)

func infoCommand() cli.Command {
	return cli.Command{
		Name:  "info",
		Usage: "Print summary information about an EDB file",
		Action: func(c *cli.Context) error {
			path, err := requireEDBPath(c)
			if err != nil {
				return err
			}
			db, err := OpenDatabase(path)
			if err != nil {
				return exitFor(err)
			}
			tables, err := db.Tables()
			if err != nil {
				return exitFor(err)
			}
			console.Info.Printf("%s: %d table(s)", path, len(tables))
			for _, t := range tables {
				console.Info.Printf("  %-24s %d record(s)", t.Name(), t.NumRecords())
			}
			return nil
		},
	}
}

func listMailboxesCommand() cli.Command {
	return cli.Command{
		Name:  "list-mailboxes",
		Usage: "List every mailbox present in the EDB",
		Action: func(c *cli.Context) error {
			path, err := requireEDBPath(c)
			if err != nil {
				return err
			}
			db, err := OpenDatabase(path)
			if err != nil {
				return exitFor(err)
			}
			table, err := findTable(db, "Mailbox")
			if err != nil {
				return cli.NewExitError(err.Error(), exitInputNotFound)
			}
			for i := 0; i < table.NumRecords(); i++ {
				row, err := table.Record(i)
				if err != nil {
					continue
				}
				mailbox := entity.AssembleMailbox(row)
				console.Info.Printf("%4d  %s", mailbox.MailboxNumber, mailbox.OwnerDisplayName)
			}
			return nil
		},
	}
}

func listFoldersCommand() cli.Command {
	return cli.Command{
		Name:  "list-folders",
		Usage: "List folders within a mailbox",
		Flags: []cli.Flag{
			cli.IntFlag{Name: "m", Usage: "Mailbox number"},
		},
		Action: func(c *cli.Context) error {
			path, err := requireEDBPath(c)
			if err != nil {
				return err
			}
			db, err := OpenDatabase(path)
			if err != nil {
				return exitFor(err)
			}
			folders, _, err := loadFolders(db, c.Int("m"))
			if err != nil {
				return exitFor(err)
			}
			for _, f := range folders {
				console.Info.Printf("%x  %-32s %d message(s)", f.FolderID, f.DisplayName, f.MessageCount)
			}
			return nil
		},
	}
}

func listEmailsCommand() cli.Command {
	return cli.Command{
		Name:  "list-emails",
		Usage: "List emails within a mailbox, optionally filtered",
		Flags: []cli.Flag{
			cli.IntFlag{Name: "m", Usage: "Mailbox number"},
			cli.StringFlag{Name: "s", Usage: "Subject substring filter"},
			cli.StringFlag{Name: "date-from", Usage: "YYYY-MM-DD"},
			cli.StringFlag{Name: "date-to", Usage: "YYYY-MM-DD"},
			cli.StringFlag{Name: "csv", Usage: "Write results as CSV to this path"},
		},
		Action: func(c *cli.Context) error {
			path, err := requireEDBPath(c)
			if err != nil {
				return err
			}
			db, err := OpenDatabase(path)
			if err != nil {
				return exitFor(err)
			}

			report := newReport(c)
			messages, err := loadMessages(db, c.Int("m"), report)
			if err != nil {
				return exitFor(err)
			}

			messages = filterMessages(messages, c.String("s"), c.String("date-from"), c.String("date-to"))

			if csvPath := c.String("csv"); csvPath != "" {
				if err := writeCSV(csvPath, messages); err != nil {
					return cli.NewExitError(err.Error(), exitUsageError)
				}
			} else {
				for _, m := range messages {
					console.Info.Printf("%6d  %-24s  %s", m.RecordIndex, m.SenderName, m.Subject)
				}
			}

			printSummary(report, c.GlobalString("report-format"))
			if report.Total() > 0 {
				return cli.NewExitError("completed with diagnostics", exitPartial)
			}
			return nil
		},
	}
}

func exportEmailCommand() cli.Command {
	return cli.Command{
		Name:  "export-email",
		Usage: "Export a single email as an .eml file",
		Flags: []cli.Flag{
			cli.IntFlag{Name: "m", Usage: "Mailbox number"},
			cli.IntFlag{Name: "r", Usage: "Record (document) index"},
			cli.StringFlag{Name: "o", Usage: "Output file path"},
		},
		Action: func(c *cli.Context) error {
			path, err := requireEDBPath(c)
			if err != nil {
				return err
			}
			if c.String("o") == "" {
				return cli.NewExitError("Required flag -o is missing", exitUsageError)
			}
			db, err := OpenDatabase(path)
			if err != nil {
				return exitFor(err)
			}

			report := newReport(c)
			messages, err := loadMessages(db, c.Int("m"), report)
			if err != nil {
				return exitFor(err)
			}

			var found *entity.EmailMessage
			for i := range messages {
				if messages[i].RecordIndex == c.Int("r") {
					found = &messages[i]
					break
				}
			}
			if found == nil {
				return cli.NewExitError(fmt.Sprintf("record %d not found", c.Int("r")), exitInputNotFound)
			}

			f, err := os.Create(c.String("o"))
			if err != nil {
				return cli.NewExitError(err.Error(), exitUsageError)
			}
			defer f.Close()
			if err := exportfmt.WriteEML(f, *found); err != nil {
				return cli.NewExitError(err.Error(), exitUsageError)
			}

			printSummary(report, c.GlobalString("report-format"))
			return nil
		},
	}
}

func exportFolderCommand() cli.Command {
	return cli.Command{
		Name:  "export-folder",
		Usage: "Export every email in a folder as .eml files, or a single .pst",
		Flags: []cli.Flag{
			cli.IntFlag{Name: "m", Usage: "Mailbox number"},
			cli.StringFlag{Name: "f", Usage: "Folder ID (hex)"},
			cli.StringFlag{Name: "o", Usage: "Output directory"},
			cli.StringFlag{Name: "format", Value: "eml", Usage: "eml, mbox, or pst"},
		},
		Action: func(c *cli.Context) error {
			path, err := requireEDBPath(c)
			if err != nil {
				return err
			}
			if c.String("o") == "" {
				return cli.NewExitError("Required flag -o is missing", exitUsageError)
			}
			db, err := OpenDatabase(path)
			if err != nil {
				return exitFor(err)
			}

			report := newReport(c)
			folders, mailbox, err := loadFolders(db, c.Int("m"))
			if err != nil {
				return exitFor(err)
			}
			messages, err := loadMessages(db, c.Int("m"), report)
			if err != nil {
				return exitFor(err)
			}

			var targetID [26]byte
			copy(targetID[:], mustHexDecode(c.String("f")))

			var folderMessages []entity.EmailMessage
			for _, m := range messages {
				if m.FolderID == targetID {
					folderMessages = append(folderMessages, m)
				}
			}

			if err := exportMessages(c.String("format"), c.String("o"), mailbox, folders, map[[26]byte][]entity.EmailMessage{targetID: folderMessages}); err != nil {
				return cli.NewExitError(err.Error(), exitUsageError)
			}

			printSummary(report, c.GlobalString("report-format"))
			return nil
		},
	}
}

func exportMailboxCommand() cli.Command {
	return cli.Command{
		Name:  "export-mailbox",
		Usage: "Export an entire mailbox as .eml files, or a single .pst",
		Flags: []cli.Flag{
			cli.IntFlag{Name: "m", Usage: "Mailbox number"},
			cli.StringFlag{Name: "o", Usage: "Output directory"},
			cli.StringFlag{Name: "format", Value: "eml", Usage: "eml, mbox, or pst"},
		},
		Action: func(c *cli.Context) error {
			path, err := requireEDBPath(c)
			if err != nil {
				return err
			}
			if c.String("o") == "" {
				return cli.NewExitError("Required flag -o is missing", exitUsageError)
			}
			db, err := OpenDatabase(path)
			if err != nil {
				return exitFor(err)
			}

			report := newReport(c)
			folders, mailbox, err := loadFolders(db, c.Int("m"))
			if err != nil {
				return exitFor(err)
			}
			messages, err := loadMessages(db, c.Int("m"), report)
			if err != nil {
				return exitFor(err)
			}

			byFolder := make(map[[26]byte][]entity.EmailMessage)
			for _, m := range messages {
				byFolder[m.FolderID] = append(byFolder[m.FolderID], m)
			}

			if err := exportMessages(c.String("format"), c.String("o"), mailbox, folders, byFolder); err != nil {
				return cli.NewExitError(err.Error(), exitUsageError)
			}

			printSummary(report, c.GlobalString("report-format"))
			return nil
		},
	}
}

func exportCalendarCommand() cli.Command {
	return cli.Command{
		Name:  "export-calendar",
		Usage: "Export calendar events within a mailbox as a single .ics file",
		Flags: []cli.Flag{
			cli.IntFlag{Name: "m", Usage: "Mailbox number"},
			cli.StringFlag{Name: "o", Usage: "Output file path"},
		},
		Action: func(c *cli.Context) error {
			path, err := requireEDBPath(c)
			if err != nil {
				return err
			}
			if c.String("o") == "" {
				return cli.NewExitError("Required flag -o is missing", exitUsageError)
			}
			db, err := OpenDatabase(path)
			if err != nil {
				return exitFor(err)
			}

			report := newReport(c)
			events, err := loadCalendarEvents(db, c.Int("m"), report)
			if err != nil {
				return exitFor(err)
			}

			var b strings.Builder
			for _, ev := range events {
				b.WriteString(exportfmt.WriteICS(ev))
			}
			if err := os.WriteFile(c.String("o"), []byte(b.String()), 0644); err != nil {
				return cli.NewExitError(err.Error(), exitUsageError)
			}

			printSummary(report, c.GlobalString("report-format"))
			return nil
		},
	}
}

func exportMessages(format, outDir string, mailbox entity.Mailbox, folders []entity.Folder, byFolder map[[26]byte][]entity.EmailMessage) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	if format == "pst" {
		w := pstmsg.NewWriter()
		w.WriteMailbox(mailbox, folders, byFolder)
		out := w.Finalize()
		if cfg, err := config.Load(); err == nil && int64(len(out)) > cfg.MaxPSTBytes {
			return diag.New(diag.KindPstSpaceExhausted, "export.pst", "synthesized PST exceeds the configured size ceiling")
		}
		return os.WriteFile(filepath.Join(outDir, "export.pst"), out, 0644)
	}

	if format == "mbox" {
		f, err := os.Create(filepath.Join(outDir, "export.mbox"))
		if err != nil {
			return err
		}
		defer f.Close()

		var all []entity.EmailMessage
		for _, msgs := range byFolder {
			all = append(all, msgs...)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].RecordIndex < all[j].RecordIndex })

		for _, m := range all {
			if err := exportfmt.WriteMBOX(f, m); err != nil {
				return err
			}
		}
		return nil
	}

	for _, msgs := range byFolder {
		for _, m := range msgs {
			name := fmt.Sprintf("%d.eml", m.RecordIndex)
			f, err := os.Create(filepath.Join(outDir, name))
			if err != nil {
				return err
			}
			err = exportfmt.WriteEML(f, m)
			f.Close()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func exitFor(err error) error {
	if de, ok := err.(*diag.Error); ok {
		switch de.Kind {
		case diag.KindInputNotFound, diag.KindMalformedDatabase:
			return cli.NewExitError(de.Error(), exitInputNotFound)
		}
	}
	return cli.NewExitError(err.Error(), exitUsageError)
}

func mustHexDecode(s string) []byte {
	out := make([]byte, 0, len(s)/2)
	for i := 0; i+1 < len(s); i += 2 {
		var b byte
		fmt.Sscanf(s[i:i+2], "%02x", &b)
		out = append(out, b)
	}
	return out
}

func filterMessages(messages []entity.EmailMessage, subject, dateFrom, dateTo string) []entity.EmailMessage {
	var from, to time.Time
	var hasFrom, hasTo bool
	if dateFrom != "" {
		if t, err := time.Parse("2006-01-02", dateFrom); err == nil {
			from, hasFrom = t, true
		}
	}
	if dateTo != "" {
		if t, err := time.Parse("2006-01-02", dateTo); err == nil {
			to, hasTo = t, true
		}
	}

	var out []entity.EmailMessage
	for _, m := range messages {
		if subject != "" && !strings.Contains(strings.ToLower(m.Subject), strings.ToLower(subject)) {
			continue
		}
		if hasFrom && m.HasDateSent && m.DateSent.Before(from) {
			continue
		}
		if hasTo && m.HasDateSent && m.DateSent.After(to) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func writeCSV(path string, messages []entity.EmailMessage) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, "record_index,sender_name,sender_email,subject,date_sent")
	for _, m := range messages {
		dateSent := ""
		if m.HasDateSent {
			dateSent = m.DateSent.Format(time.RFC3339)
		}
		fmt.Fprintf(f, "%d,%q,%q,%q,%s\n", m.RecordIndex, m.SenderName, m.SenderEmail, m.Subject, dateSent)
	}
	return nil
}

func loadFolders(db ese.Database, mailboxNum int) ([]entity.Folder, entity.Mailbox, error) {
	var mailbox entity.Mailbox
	mailboxTable, err := findTable(db, "Mailbox")
	if err == nil {
		for i := 0; i < mailboxTable.NumRecords(); i++ {
			row, err := mailboxTable.Record(i)
			if err != nil {
				continue
			}
			m := entity.AssembleMailbox(row)
			if m.MailboxNumber == mailboxNum {
				mailbox = m
				break
			}
		}
	}

	table, err := findTable(db, "Folder_"+strconv.Itoa(mailboxNum))
	if err != nil {
		return nil, mailbox, err
	}

	var folders []entity.Folder
	for i := 0; i < table.NumRecords(); i++ {
		row, err := table.Record(i)
		if err != nil {
			continue
		}
		folders = append(folders, entity.AssembleFolder(row))
	}
	return folders, mailbox, nil
}

func loadMessages(db ese.Database, mailboxNum int, report *diag.Report) ([]entity.EmailMessage, error) {
	table, err := findTable(db, "Message_"+strconv.Itoa(mailboxNum))
	if err != nil {
		return nil, err
	}

	attachTable, _ := findTable(db, "Attachment_"+strconv.Itoa(mailboxNum))

	var messages []entity.EmailMessage
	for i := 0; i < table.NumRecords(); i++ {
		row, err := table.Record(i)
		if err != nil {
			report.Record(diag.Wrap(diag.KindIoError, table.Name(), i, "", err))
			continue
		}

		resolveAttachment := func(inid uint32) (entity.Attachment, bool) {
			if attachTable == nil {
				return entity.Attachment{}, false
			}
			for j := 0; j < attachTable.NumRecords(); j++ {
				attRow, err := attachTable.Record(j)
				if err != nil {
					continue
				}
				if id, ok := (ese.ColumnGetter{Row: attRow}).Int("Inid"); ok && uint32(id) == inid {
					return entity.AttachmentFromRow(attRow), true
				}
			}
			return entity.Attachment{}, false
		}

		msg, err := entity.AssembleEmail(row, table.Name(), i, resolveAttachment)
		if err != nil {
			report.Record(err)
			continue
		}
		if entity.Classify(msg.MessageClass) == entity.VariantEmail {
			messages = append(messages, msg)
		}
	}
	return messages, nil
}

func loadCalendarEvents(db ese.Database, mailboxNum int, report *diag.Report) ([]entity.CalendarEvent, error) {
	table, err := findTable(db, "Message_"+strconv.Itoa(mailboxNum))
	if err != nil {
		return nil, err
	}

	var events []entity.CalendarEvent
	for i := 0; i < table.NumRecords(); i++ {
		row, err := table.Record(i)
		if err != nil {
			report.Record(diag.Wrap(diag.KindIoError, table.Name(), i, "", err))
			continue
		}
		msgClass := string((ese.ColumnGetter{Row: row}).Raw("MessageClass"))
		if entity.Classify(msgClass) != entity.VariantCalendarEvent {
			continue
		}
		events = append(events, entity.AssembleCalendarEvent(row, table.Name(), i))
	}
	return events, nil
}
