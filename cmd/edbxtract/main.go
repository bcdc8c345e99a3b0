// Command edbxtract reads an Exchange EDB database and extracts
// email/calendar/contact records, or assembles a synthesized PST from
// already-extracted entities. CLI surface grounded directly on
// sensepost-ruler/ruler.go's `cli.NewApp`/`app.Commands`/flag-declaration
// structure, per spec.md §6 and SPEC_FULL.md §4.11.
package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli"

	"github.com/sensepost/edbxtract/config"
	"github.com/sensepost/edbxtract/diag"
)

// exit codes per spec.md §6.
const (
	exitSuccess       = 0
	exitUsageError    = 2
	exitInputNotFound = 3
	exitPartial       = 4
)

var console *diag.Console

func main() {
	app := cli.NewApp()
	app.Name = "edbxtract"
	app.Usage = "Extract Exchange EDB mailboxes and synthesize PST files"
	app.Version = "1.0.0"
	app.Description = `An Exchange EDB extraction and PST synthesis toolkit.

Reads ESE/JET Blue databases used by Exchange to store mailboxes, extracts
email/calendar/contact records, and assembles byte-valid Outlook PST files
from the results.`

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "edb",
			Value: "",
			Usage: "Path to the Exchange EDB file to read",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "Print informational [+] output, including command listings, to stdout",
		},
		cli.StringFlag{
			Name:  "report-format",
			Value: "",
			Usage: "Job-end summary format: text (default) or yaml",
		},
	}

	app.Before = func(c *cli.Context) error {
		if c.GlobalBool("verbose") {
			console = diag.NewConsole(os.Stdout, os.Stdout, os.Stderr)
		} else {
			console = diag.NewConsole(ioutil.Discard, os.Stdout, os.Stderr)
		}
		return nil
	}

	app.Commands = []cli.Command{
		infoCommand(),
		listMailboxesCommand(),
		listFoldersCommand(),
		listEmailsCommand(),
		exportEmailCommand(),
		exportFolderCommand(),
		exportMailboxCommand(),
		exportCalendarCommand(),
	}

	if err := app.Run(os.Args); err != nil {
		console.Error.Println(err)
		if exitErr, ok := err.(*cli.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(exitUsageError)
	}
}

// newReport builds a diag.Report wired to zerolog on stderr, at the level the
// ambient config's LogLevel names (info when it is empty or unrecognized).
// The report format is resolved separately by printSummary.
func newReport(c *cli.Context) *diag.Report {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Config{ReportFormat: "text"}
	}
	format := c.GlobalString("report-format")
	if format == "" {
		format = cfg.ReportFormat
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	report := diag.NewReport(logger)

	// format is consulted again at job end by printSummary; stash it on
	// the context-free package var is avoided by returning it alongside
	// the report where commands need it.
	_ = format
	return report
}

// printSummary writes the job-end summary in format, falling back to the
// ambient config's ReportFormat when format is empty.
func printSummary(report *diag.Report, format string) {
	if format == "" {
		if cfg, err := config.Load(); err == nil {
			format = cfg.ReportFormat
		}
	}
	summary := report.BuildSummary()
	if format == "yaml" {
		out, err := summary.YAML()
		if err == nil {
			fmt.Fprintln(os.Stderr, string(out))
			return
		}
	}
	console.PrintSummary(summary)
}

func requireEDBPath(c *cli.Context) (string, error) {
	path := c.GlobalString("edb")
	if path == "" {
		return "", cli.NewExitError("Required flag --edb is missing", exitUsageError)
	}
	if _, err := os.Stat(path); err != nil {
		return "", cli.NewExitError(fmt.Sprintf("Input file not found: %s", path), exitInputNotFound)
	}
	return path, nil
}
