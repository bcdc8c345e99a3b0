// Package ese defines the narrow capability interface any ESE/JET Blue
// parser backend must expose (spec.md §6), decoupling the rest of this
// module from a specific ESE-parsing library. It also provides the
// column-map-by-name helper the rest of the pipeline builds on, grounded on
// original_source/src/core/exchange_parser.py's _get_column_map/_get_bytes_value
// caching pattern.
package ese

// Row is the narrow, duck-typed capability interface a backing ESE parser
// implements for a single table row: fetch raw bytes by column name, report
// long-value-ness, and resolve a long value by its 4-byte LV-ID. It has no
// column-enumeration method.
type Row interface {
	// ColumnBytes returns the raw column bytes for the named column, and
	// whether the column was present at all (a column absent from the
	// table schema is distinct from one present but NULL).
	ColumnBytes(column string) (data []byte, present bool)

	// IsLongValue reports whether the named column's inline bytes are
	// actually a 4-byte long-value reference rather than the real payload.
	IsLongValue(column string) bool

	// ResolveLongValue follows a long-value reference to its full byte
	// sequence. lvID is the 4-byte LV-ID read from the column's inline
	// bytes when IsLongValue is true.
	ResolveLongValue(lvID uint32) ([]byte, error)
}

// Table enumerates records of one ESE table (e.g. "Message_103").
type Table interface {
	Name() string
	NumRecords() int
	Record(index int) (Row, error)
}

// Database is the root capability: table enumeration by name pattern
// (spec.md §6's "Folder_XXX" / "Message_XXX" / "Attachment_XXX" / "Mailbox"
// requirement).
type Database interface {
	// Tables returns every table present in the EDB, in parser-native
	// order.
	Tables() ([]Table, error)
}

// Bytes returns the column's raw bytes, or nil if the column is absent or
// NULL. It is a thin convenience wrapper; callers that need to distinguish
// absent-from-empty should use Row.ColumnBytes directly.
func Bytes(row Row, column string) []byte {
	data, present := row.ColumnBytes(column)
	if !present {
		return nil
	}
	return data
}

// ResolveValue returns the effective bytes for a column: its inline bytes,
// or the resolved long-value payload when the column is long-value-backed.
// This is the single adapter point spec.md §4's "C3 — ESE row/long-value
// adapter" names: every caller downstream reads through here instead of
// branching on IsLongValue themselves.
func ResolveValue(row Row, column string) ([]byte, error) {
	data, present := row.ColumnBytes(column)
	if !present {
		return nil, nil
	}
	if !row.IsLongValue(column) {
		return data, nil
	}
	if len(data) < 4 {
		return nil, nil
	}
	lvID := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	return row.ResolveLongValue(lvID)
}
