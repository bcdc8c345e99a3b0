package diag

import (
	"io"
	"log"
)

// Console holds the operator-facing banner loggers, adapted from the
// teacher's utils/logging.go Trace/Info/Fail/Warning/Error prefix
// convention. It is the human-readable counterpart to Report's structured
// zerolog event stream: Console prints job banners and the final
// counts-by-kind table to the terminal, Report emits one structured event
// per diagnostic for log aggregation.
type Console struct {
	Info    *log.Logger
	Warning *log.Logger
	Error   *log.Logger
}

// NewConsole builds a Console the way utils.Init did, minus the Trace
// level (this tool has no protocol-trace concept to show).
func NewConsole(infoW, warnW, errW io.Writer) *Console {
	return &Console{
		Info:    log.New(infoW, "[+] ", 0),
		Warning: log.New(warnW, "[WARNING] ", 0),
		Error:   log.New(errW, "[x] ", log.Ldate|log.Ltime),
	}
}

// PrintSummary renders the job-end counts-by-kind table spec.md §7
// requires on the console, in the teacher's "[+] " banner style.
func (c *Console) PrintSummary(s Summary) {
	if s.TotalDiagnostics == 0 {
		c.Info.Println("completed with no diagnostics")
		return
	}
	c.Warning.Printf("completed with %d diagnostic(s):", s.TotalDiagnostics)
	for kind, count := range s.CountsByKind {
		c.Warning.Printf("  %-28s %d", kind, count)
	}
}
