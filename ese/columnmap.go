package ese

import "strconv"

// ColumnGetter reads typed scalars out of a Row's resolved bytes, mirroring
// original_source/src/core/exchange_parser.py's _get_int_value/_get_bool_value/
// _get_filetime_value helpers but operating on the already-resolved byte
// slice rather than re-deriving it per call.
type ColumnGetter struct {
	Row Row
}

// Int decodes a 1/2/4/8-byte little-endian column as an integer. Returns
// ok=false if the column is absent or an unexpected width.
func (g ColumnGetter) Int(column string) (value int64, ok bool) {
	data, err := ResolveValue(g.Row, column)
	if err != nil || data == nil {
		return 0, false
	}
	switch len(data) {
	case 1:
		return int64(data[0]), true
	case 2:
		return int64(uint16(data[0]) | uint16(data[1])<<8), true
	case 4:
		return int64(uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24), true
	case 8:
		var v uint64
		for i := 7; i >= 0; i-- {
			v = v<<8 | uint64(data[i])
		}
		return int64(v), true
	default:
		return 0, false
	}
}

// Bool treats any non-empty, non-all-zero column as true, matching
// _get_bool_value's `val != b'\x00' and val != b'\x00\x00'` check.
func (g ColumnGetter) Bool(column string) bool {
	data, err := ResolveValue(g.Row, column)
	if err != nil || len(data) == 0 {
		return false
	}
	for _, b := range data {
		if b != 0 {
			return true
		}
	}
	return false
}

// Raw returns the resolved bytes for column, or nil.
func (g ColumnGetter) Raw(column string) []byte {
	data, _ := ResolveValue(g.Row, column)
	return data
}

// MessageTableSuffix extracts the mailbox number suffix from a partitioned
// table name like "Message_103" -> "103", "" if the name doesn't match the
// "<Prefix>_<digits>" shape spec.md §6 requires.
func MessageTableSuffix(prefix, tableName string) string {
	want := prefix + "_"
	if len(tableName) <= len(want) || tableName[:len(want)] != want {
		return ""
	}
	suffix := tableName[len(want):]
	if _, err := strconv.Atoi(suffix); err != nil {
		return ""
	}
	return suffix
}
