package ltp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeap_AllocAndGet(t *testing.T) {
	h := NewHeap(ClientSigPropertyContext)
	hid := h.Alloc([]byte("payload"))
	require.Equal(t, []byte("payload"), h.Get(hid))
}

func TestHeap_EncodeContainsSignature(t *testing.T) {
	h := NewHeap(ClientSigTableContext)
	h.Alloc([]byte{1, 2, 3})
	encoded := h.Encode()
	require.Equal(t, byte(0xEC), encoded[0])
	require.Equal(t, byte(ClientSigTableContext), encoded[1])
}

func TestBTH_BuildSortsByKey(t *testing.T) {
	heap := NewHeap(ClientSigPropertyContext)
	bth := NewBTH(heap, 2, 8)
	bth.Add(BTHEntry{Key: 5, Value: make([]byte, 8)})
	bth.Add(BTHEntry{Key: 1, Value: make([]byte, 8)})
	bth.Add(BTHEntry{Key: 3, Value: make([]byte, 8)})

	root := bth.Build()
	require.NotEqual(t, HID(0), root)

	header := heap.Get(root)
	require.Len(t, header, bthHeaderSize)
	require.Equal(t, byte(0xB5), header[0])
}

func TestPropertyContext_InlineAndVariable(t *testing.T) {
	pc := NewPropertyContext()
	pc.Put(PropertyValue{Tag: 0x0C1A001F, Variable: []byte("Jane Roe")})
	pc.Put(PropertyValue{Tag: 0x0017_0003, Inline: []byte{1, 0, 0, 0}})

	data := pc.Build()
	require.NotEmpty(t, data)
	require.Equal(t, byte(0xEC), data[0])
}

func TestTableContext_BuildProducesRows(t *testing.T) {
	columns := []ColumnDescriptor{
		{Tag: 0x3001001F, Type: ColHID},
		{Tag: 0x0E1B000B, Type: ColBoolean},
	}
	tc := NewTableContext(columns)
	tc.AddRow(Row{RowID: 1, Cells: map[uint32][]byte{
		0x3001001F: []byte("Inbox"),
		0x0E1B000B: {1},
	}})
	tc.AddRow(Row{RowID: 2, Cells: map[uint32][]byte{
		0x3001001F: []byte("Sent Items"),
		0x0E1B000B: {0},
	}})

	data := tc.Build()
	require.NotEmpty(t, data)
	require.Len(t, tc.rows, 2)
	require.Equal(t, 4+widthOf(ColHID)+widthOf(ColBoolean), tc.rowWidth())
}
