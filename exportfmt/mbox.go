package exportfmt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sensepost/edbxtract/entity"
)

// asctimeLayout is the traditional mbox "From " envelope date format (Unix
// ctime/asctime), e.g. "Mon Jan  2 15:04:05 2006".
const asctimeLayout = "Mon Jan _2 15:04:05 2006"

// WriteMBOX appends msg to w in Unix mbox format: a "From <addr> <date>"
// envelope line, the message rendered the same way WriteEML renders it,
// any line that begins with "From " escaped with a leading ">" (the mbox
// quoting rule that keeps a literal "From " inside a body from being
// mistaken for the next message's envelope), and a trailing blank line
// separating it from whatever is appended next.
//
// Grounded on original_source/src/exporters/mbox_exporter.py's
// _export_message/_escape_from_lines.
func WriteMBOX(w io.Writer, msg entity.EmailMessage) error {
	rendered, err := RenderEML(msg)
	if err != nil {
		return err
	}

	sender := msg.SenderEmail
	if sender == "" {
		sender = "unknown@unknown"
	}
	date := msg.DateSent
	if !msg.HasDateSent && msg.HasDateRecvd {
		date = msg.DateReceived
	}
	if date.IsZero() {
		date = time.Now()
	}

	if _, err := fmt.Fprintf(w, "From %s %s\n", sender, date.UTC().Format(asctimeLayout)); err != nil {
		return err
	}
	if err := writeEscapedFromLines(w, rendered); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// writeEscapedFromLines writes content line by line, prefixing any line
// that begins with "From " with ">".
func writeEscapedFromLines(w io.Writer, content []byte) error {
	bw := bufio.NewWriter(w)
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "From ") {
			if _, err := bw.WriteString(">"); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if i < len(lines)-1 {
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
