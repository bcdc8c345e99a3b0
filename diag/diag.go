// Package diag implements the error taxonomy and per-job diagnostic
// reporting described in spec.md §7: recoverable per-record failures are
// recorded and counted rather than aborting the surrounding iteration, while
// a fixed set of fatal kinds abort the job.
package diag

import "fmt"

// Kind is the closed error taxonomy of spec.md §7.
type Kind string

const (
	KindInputNotFound            Kind = "InputNotFound"
	KindMalformedDatabase         Kind = "MalformedDatabase"
	KindUnsupportedColumnType     Kind = "UnsupportedColumnType"
	KindDecompressionFailed       Kind = "DecompressionFailed"
	KindUnexpectedPropertyBlob    Kind = "UnexpectedPropertyBlobShape"
	KindLongValueMissing          Kind = "LongValueMissing"
	KindPstSpaceExhausted         Kind = "PstSpaceExhausted"
	KindCancelled                 Kind = "Cancelled"
	KindIoError                   Kind = "IoError"
)

// Fatal kinds abort the whole job rather than being recovered per-record.
func (k Kind) Fatal() bool {
	switch k {
	case KindPstSpaceExhausted, KindCancelled, KindIoError, KindInputNotFound:
		return true
	default:
		return false
	}
}

// Error carries the taxonomy kind plus the context path (table, row,
// column) spec.md §7 requires, and wraps the underlying cause so
// errors.Is/errors.As keep working.
type Error struct {
	Kind   Kind
	Table  string
	Row    int
	Column string
	Hint   string
	Cause  error
}

func (e *Error) Error() string {
	loc := e.Table
	if e.Row >= 0 {
		loc = fmt.Sprintf("%s[%d]", loc, e.Row)
	}
	if e.Column != "" {
		loc = fmt.Sprintf("%s.%s", loc, e.Column)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", loc, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Kind, e.Hint)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a context-carrying Error with row set to -1 (no row context).
func New(kind Kind, table string, hint string) *Error {
	return &Error{Kind: kind, Table: table, Row: -1, Hint: hint}
}

// WithRow returns a copy of e with row/column context attached.
func (e *Error) WithRow(row int, column string) *Error {
	cp := *e
	cp.Row = row
	cp.Column = column
	return &cp
}

// Wrap builds a context-carrying Error around an existing cause.
func Wrap(kind Kind, table string, row int, column string, cause error) *Error {
	return &Error{Kind: kind, Table: table, Row: row, Column: column, Cause: cause}
}
