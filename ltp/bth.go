package ltp

import (
	"sort"

	"github.com/sensepost/edbxtract/bytesx"
)

// bthHeaderSize is the BTHHEADER: bType(1)+cbKey(1)+cbEnt(1)+bIdxLevels(1)+
// hidRoot(4) = 8.
const bthHeaderSize = 8

// BTHEntry is one leaf record of a BTree-on-Heap: a fixed-width key and a
// fixed-width value (inline value bytes, or an HID/NID reference the
// caller has already encoded into Value).
type BTHEntry struct {
	Key   uint64 // only the low cbKey bytes are significant
	Value []byte // exactly cbValue bytes
}

// BTH builds a single-level (leaf-only) BTree-on-Heap: sufficient for the
// property and column counts a single PC/TC row produces, per spec.md
// §4.6's "BTree-on-Heap" bullet.
type BTH struct {
	heap    *Heap
	cbKey   uint8
	cbValue uint8
	entries []BTHEntry
}

// NewBTH creates a BTH writer backed by heap, with the given key and value
// widths in bytes (cbKey is 2 for PC property-tag keys, cbValue varies by
// column width in a TC).
func NewBTH(heap *Heap, cbKey, cbValue uint8) *BTH {
	return &BTH{heap: heap, cbKey: cbKey, cbValue: cbValue}
}

// Add inserts one entry. Entries may be added in any order; Build sorts by
// key as [MS-PST] requires.
func (b *BTH) Add(entry BTHEntry) {
	b.entries = append(b.entries, entry)
}

// Build sorts the accumulated entries, allocates the leaf record array and
// the BTHHEADER on the backing heap, and returns the header's HID (the
// value a PC/TC's own heap user-root should reference).
func (b *BTH) Build() HID {
	sort.Slice(b.entries, func(i, j int) bool { return b.entries[i].Key < b.entries[j].Key })

	w := bytesx.NewWriter()
	for _, e := range b.entries {
		putKeyBytes(w, e.Key, int(b.cbKey))
		w.PutBytes(padOrTrim(e.Value, int(b.cbValue)))
	}
	leafHID := HID(0)
	if len(b.entries) > 0 {
		leafHID = b.heap.Alloc(w.Bytes())
	}

	header := bytesx.NewWriter()
	header.PutUint8(0xB5) // bType: BTH signature
	header.PutUint8(b.cbKey)
	header.PutUint8(b.cbValue)
	header.PutUint8(0) // bIdxLevels: 0, this writer never builds index levels
	header.PutUint32(uint32(leafHID))

	return b.heap.Alloc(header.Bytes())
}

func putKeyBytes(w *bytesx.Writer, key uint64, width int) {
	for i := 0; i < width; i++ {
		w.PutUint8(uint8(key >> (8 * uint(i))))
	}
}

func padOrTrim(v []byte, width int) []byte {
	if len(v) >= width {
		return v[:width]
	}
	out := make([]byte, width)
	copy(out, v)
	return out
}
