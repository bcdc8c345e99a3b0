package ltp

import "github.com/sensepost/edbxtract/bytesx"

// ColumnType enumerates the PtypXxx widths a Table Context column may
// hold, narrowed to what this tool's Hierarchy/Contents/Recipients/
// Attachments tables actually need.
type ColumnType uint16

const (
	ColInteger32 ColumnType = 0x0003
	ColBoolean   ColumnType = 0x000B
	ColTime      ColumnType = 0x0040
	ColHID       ColumnType = 0x001F // variable-length data stored via HID
	ColBinary    ColumnType = 0x0102
)

// widthOf returns the fixed-row width in bytes a column of this type
// occupies; variable-length columns store a 4-byte HID in the row instead
// of their actual data.
func widthOf(t ColumnType) int {
	switch t {
	case ColBoolean:
		return 1
	case ColInteger32:
		return 4
	case ColTime:
		return 8 // full FILETIME, not truncated
	default:
		return 4 // HID/NID reference
	}
}

// ColumnDescriptor describes one Table Context column: its property tag and
// type. Rows carry no cell-existence bitmap.
type ColumnDescriptor struct {
	Tag  uint32
	Type ColumnType
}

// Row is one Table Context record: a row identifier (typically an NID) and
// its cell values keyed by column tag. Variable-length cells are
// heap-allocated by TableContext.Build; fixed cells are packed inline.
type Row struct {
	RowID uint32
	Cells map[uint32][]byte // tag -> raw value bytes (pre-HID for variable columns)
}

// TableContext assembles a Hierarchy/Contents/Recipients/Attachments table:
// a column schema plus a row matrix whose rows each begin with their RowID,
// per spec.md §4.6's "Table Context" bullet. No row-index BTH is built.
type TableContext struct {
	heap    *Heap
	columns []ColumnDescriptor
	rows    []Row
}

// NewTableContext creates a TC writer with a fixed column schema.
func NewTableContext(columns []ColumnDescriptor) *TableContext {
	return &TableContext{heap: NewHeap(ClientSigTableContext), columns: columns}
}

// AddRow appends one row. Its cells are packed and heap-allocated later, by
// Build.
func (tc *TableContext) AddRow(row Row) {
	tc.rows = append(tc.rows, row)
}

func (tc *TableContext) rowWidth() int {
	width := 4 // leading dwRowID
	for _, c := range tc.columns {
		width += widthOf(c.Type)
	}
	return width
}

// Build serializes the row matrix and TCINFO header, storing both on the
// backing heap, and returns the heap's encoded data block.
func (tc *TableContext) Build() []byte {
	rowWidth := tc.rowWidth()
	rowsW := bytesx.NewWriter()
	for _, row := range tc.rows {
		rowsW.PutUint32(row.RowID)
		for _, c := range tc.columns {
			width := widthOf(c.Type)
			raw := row.Cells[c.Tag]
			if c.Type == ColHID || c.Type == ColBinary {
				var hid HID
				if len(raw) > 0 {
					hid = tc.heap.Alloc(raw)
				}
				var b [4]byte
				putLE32(b[:], uint32(hid))
				rowsW.PutBytes(b[:])
				continue
			}
			data := make([]byte, width)
			copy(data, raw)
			rowsW.PutBytes(data)
		}
	}
	var rowMatrixHID HID
	if len(tc.rows) > 0 {
		rowMatrixHID = tc.heap.Alloc(rowsW.Bytes())
	}

	colsW := bytesx.NewWriter()
	ibData := uint16(4) // dwRowID occupies the first 4 bytes of each row
	for _, c := range tc.columns {
		colsW.PutUint16(uint16(c.Type))
		colsW.PutUint32(c.Tag)
		colsW.PutUint16(ibData)
		colsW.PutUint8(uint8(widthOf(c.Type)))
		ibData += uint16(widthOf(c.Type))
	}
	colsHID := tc.heap.Alloc(colsW.Bytes())

	header := bytesx.NewWriter()
	header.PutUint8(0x7C) // bType: TCINFO signature
	header.PutUint8(uint8(len(tc.columns)))
	header.PutUint16(uint16(rowWidth))
	header.PutUint32(uint32(len(tc.rows)))
	header.PutUint32(uint32(rowMatrixHID))
	header.PutUint32(uint32(colsHID))

	root := tc.heap.Alloc(header.Bytes())
	tc.heap.SetUserRoot(root)
	return tc.heap.Encode()
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
